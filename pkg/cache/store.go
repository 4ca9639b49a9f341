package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the backend storage interface for cached entries.
type Store interface {
	// Name identifies the backend for logging and metrics.
	Name() string

	// Get retrieves a serialized entry. Returns ErrCacheMiss if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a serialized entry. A ttl of zero stores it without
	// backend-side expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MemoryStore is a volatile in-process store. Entries are held until deleted
// or until the process exits; expiration is enforced by the Manager via the
// entry's Expires field.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Set implements Store. The ttl is ignored; the Manager checks the entry's
// Expires field on read.
func (s *MemoryStore) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = data
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]byte)
	return nil
}

// Len returns the number of stored entries (for testing).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
