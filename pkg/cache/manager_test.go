package cache

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestManager_Cacheable(t *testing.T) {
	m := NewManager(NewMemoryStore())

	tests := []struct {
		status   int
		expected bool
	}{
		{200, true},
		{400, true},
		{404, true},
		{503, true},
		{201, false},
		{301, false},
		{500, false},
		{429, false},
	}

	for _, tt := range tests {
		if got := m.Cacheable(tt.status); got != tt.expected {
			t.Errorf("Cacheable(%d) = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestManager_SetGetRoundTrip(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	key := Key("https://example.com/compound/cid/2244/synonyms/JSON")
	entry := NewEntry(200, http.Header{"Content-Type": []string{"application/json"}}, []byte(`{"ok":true}`))

	if err := m.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := m.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", got.StatusCode)
	}
	if string(got.Data) != `{"ok":true}` {
		t.Errorf("Data = %q", got.Data)
	}
	if got.Headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Headers.Get("Content-Type"))
	}
}

func TestManager_Get_Miss(t *testing.T) {
	m := NewManager(NewMemoryStore())

	_, err := m.Get(context.Background(), "pubchem:missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_Set_SkipsUncacheableStatus(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)
	ctx := context.Background()

	entry := NewEntry(500, http.Header{}, []byte("boom"))
	if err := m.Set(ctx, "pubchem:err", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries, want 0", store.Len())
	}
}

func TestManager_Set_CachesServerBusy(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	entry := NewEntry(503, http.Header{}, []byte("busy"))
	if err := m.Set(ctx, "pubchem:busy", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := m.Get(ctx, "pubchem:busy")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", got.StatusCode)
	}
}

func TestManager_ExpiredEntryIsAMiss(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, WithTTL(1*time.Millisecond))
	ctx := context.Background()

	entry := NewEntry(200, http.Header{}, []byte("data"))
	entry.CachedAt = time.Now().Add(-1 * time.Hour) // already stale once stamped
	if err := m.Set(ctx, "pubchem:stale", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, err := m.Get(ctx, "pubchem:stale")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired entry was not deleted, store has %d entries", store.Len())
	}
}

func TestManager_ZeroTTLHoldsIndefinitely(t *testing.T) {
	m := NewManager(NewMemoryStore(), WithTTL(0))
	ctx := context.Background()

	entry := NewEntry(200, http.Header{}, []byte("data"))
	if err := m.Set(ctx, "pubchem:forever", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := m.Get(ctx, "pubchem:forever")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Expires.IsZero() {
		t.Errorf("Expires = %v, want zero", got.Expires)
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	entry := NewEntry(503, http.Header{}, []byte("busy"))
	if err := m.Set(ctx, "pubchem:busy", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := m.Delete(ctx, "pubchem:busy"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := m.Get(ctx, "pubchem:busy")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after Delete() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_WithAllowableCodes(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, WithAllowableCodes([]int{200}))
	ctx := context.Background()

	if err := m.Set(ctx, "pubchem:404", NewEntry(404, http.Header{}, nil)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("404 cached despite restricted allowable codes")
	}
}
