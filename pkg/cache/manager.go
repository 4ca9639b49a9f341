package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultTTL is the default cache entry lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// DefaultAllowableCodes are the status codes persisted to the cache.
// 400/404 are definitive outcomes worth remembering; 503 is cached so a
// degraded remote service is not hammered with repeats of the same request.
var DefaultAllowableCodes = []int{200, 400, 404, 503}

// Manager handles caching of HTTP responses over a pluggable Store.
type Manager struct {
	store     Store
	ttl       time.Duration
	allowable map[int]struct{}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the entry lifetime. A ttl of zero holds entries indefinitely.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithAllowableCodes replaces the set of cacheable status codes.
func WithAllowableCodes(codes []int) ManagerOption {
	return func(m *Manager) {
		m.allowable = make(map[int]struct{}, len(codes))
		for _, c := range codes {
			m.allowable[c] = struct{}{}
		}
	}
}

// NewManager creates a cache manager over the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	if store == nil {
		panic("cache store cannot be nil")
	}

	m := &Manager{
		store: store,
		ttl:   DefaultTTL,
	}
	WithAllowableCodes(DefaultAllowableCodes)(m)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Cacheable reports whether a response with the given status code should be
// persisted.
func (m *Manager) Cacheable(statusCode int) bool {
	_, ok := m.allowable[statusCode]
	return ok
}

// Backend returns the name of the underlying store.
func (m *Manager) Backend() string {
	return m.store.Name()
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (m *Manager) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(m.store.Name()).Inc()
	return &entry, nil
}

// Set stores a cache entry if its status code is in the allowable set.
// The manager stamps the entry's expiration from the configured TTL.
func (m *Manager) Set(ctx context.Context, key string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if !m.Cacheable(entry.StatusCode) {
		return nil
	}

	if m.ttl > 0 {
		entry.Expires = entry.CachedAt.Add(m.ttl)
	} else {
		entry.Expires = time.Time{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.store.Set(ctx, key, data, m.ttl); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}

	CacheSize.WithLabelValues(m.store.Name()).Add(float64(len(data)))
	return nil
}

// Delete removes a cache entry. This is the invalidation used when a cached
// server-busy response turns out to be stale.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, key); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return err
	}
	return nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
