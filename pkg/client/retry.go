package client

import (
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	pubchemRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchem_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	pubchemRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pubchem_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20},
	}, []string{"error_class"})

	pubchemRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchem_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial
	// request).
	MaxAttempts int

	// InitialBackoff is the first backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration

	// JitterMax is the upper bound of the uniform random jitter added to
	// every backoff, to avoid thundering-herd retries across callers.
	JitterMax time.Duration
}

// DefaultRetryConfig returns the default retry configuration: five attempts,
// backoff doubling from one second, capped at sixteen seconds, with up to one
// second of jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     16 * time.Second,
		JitterMax:      1 * time.Second,
	}
}

// withJitter adds uniform random jitter to a backoff duration.
func (rc RetryConfig) withJitter(backoff time.Duration) time.Duration {
	if rc.JitterMax <= 0 {
		return backoff
	}
	return backoff + time.Duration(rand.Int63n(int64(rc.JitterMax)))
}

// next doubles the backoff up to the configured cap.
func (rc RetryConfig) next(backoff time.Duration) time.Duration {
	backoff *= 2
	if backoff > rc.MaxBackoff {
		backoff = rc.MaxBackoff
	}
	return backoff
}
