package client

import (
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 16*time.Second {
		t.Errorf("MaxBackoff = %v, want 16s", cfg.MaxBackoff)
	}
	if cfg.JitterMax != 1*time.Second {
		t.Errorf("JitterMax = %v, want 1s", cfg.JitterMax)
	}
}

func TestRetryConfig_Next(t *testing.T) {
	cfg := DefaultRetryConfig()

	tests := []struct {
		current  time.Duration
		expected time.Duration
	}{
		{1 * time.Second, 2 * time.Second},
		{2 * time.Second, 4 * time.Second},
		{8 * time.Second, 16 * time.Second},
		{16 * time.Second, 16 * time.Second}, // capped
	}

	for _, tt := range tests {
		if got := cfg.next(tt.current); got != tt.expected {
			t.Errorf("next(%v) = %v, want %v", tt.current, got, tt.expected)
		}
	}
}

func TestRetryConfig_WithJitter(t *testing.T) {
	cfg := RetryConfig{JitterMax: 1 * time.Second}
	base := 2 * time.Second

	for i := 0; i < 100; i++ {
		got := cfg.withJitter(base)
		if got < base || got >= base+cfg.JitterMax {
			t.Fatalf("withJitter(%v) = %v, want in [%v, %v)", base, got, base, base+cfg.JitterMax)
		}
	}
}

func TestRetryConfig_WithJitterDisabled(t *testing.T) {
	cfg := RetryConfig{JitterMax: 0}
	if got := cfg.withJitter(2 * time.Second); got != 2*time.Second {
		t.Errorf("withJitter() = %v, want unchanged", got)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassNetwork, true},
		{ErrorClass(""), false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.expected {
			t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.expected)
		}
	}
}
