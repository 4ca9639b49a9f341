package cache

import (
	"net/http"
	"time"
)

// Entry represents a cached PubChem response.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// Headers are the response headers.
	Headers http.Header `json:"headers"`

	// CachedAt is when the response was cached.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale. A zero value means the entry
	// is held indefinitely (ephemeral in-memory configuration).
	Expires time.Time `json:"expires"`
}

// NewEntry creates a cache entry from response data.
func NewEntry(statusCode int, headers http.Header, body []byte) *Entry {
	return &Entry{
		Data:       body,
		StatusCode: statusCode,
		Headers:    headers.Clone(),
		CachedAt:   time.Now(),
	}
}

// IsExpired returns true if the entry has expired. Entries without an
// expiration time never expire.
func (e *Entry) IsExpired() bool {
	if e.Expires.IsZero() {
		return false
	}
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration. Returns 0 if already expired or if
// the entry never expires.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return 0
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
