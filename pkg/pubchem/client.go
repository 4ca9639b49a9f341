package pubchem

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chemfetch/pubchem-client/pkg/cache"
	"github.com/chemfetch/pubchem-client/pkg/client"
	"github.com/chemfetch/pubchem-client/pkg/ratelimit"
)

// PubChem PUG endpoints.
const (
	DefaultBaseURL     = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultViewBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug_view/data"
)

// DefaultCacheName is the directory used by the default persistent cache.
const DefaultCacheName = "pubchem_cache"

// Backend selects the response cache storage.
type Backend string

const (
	// BackendBadger is the default: a persistent file cache.
	BackendBadger Backend = "badger"

	// BackendRedis shares the cache across processes. Requires Config.Redis.
	BackendRedis Backend = "redis"

	// BackendMemory is volatile and holds entries indefinitely unless a TTL
	// is configured.
	BackendMemory Backend = "memory"
)

// Config holds the client configuration. The zero value of every field maps
// to a documented default, so Config{} builds a working client with a
// persistent file cache and a one-week entry lifetime.
type Config struct {
	// CacheBackend selects the cache storage (default BackendBadger).
	CacheBackend Backend

	// CacheName is the badger cache directory (default "pubchem_cache").
	CacheName string

	// CacheTTL is the cache entry lifetime. Zero means the backend default:
	// one week for persistent backends, indefinite for the memory backend.
	// Negative values hold entries indefinitely on any backend.
	CacheTTL time.Duration

	// Redis is the client used by BackendRedis.
	Redis *redis.Client

	// RequestsPerSecond caps outbound request rate (default 5, the PubChem
	// usage policy limit).
	RequestsPerSecond float64

	// UserAgent identifies this client to PubChem.
	UserAgent string

	// Timeout is the per-request timeout (default 15s).
	Timeout time.Duration

	// Retry configures the backoff policy (zero value means default).
	Retry client.RetryConfig

	// BaseURL and ViewBaseURL override the PubChem endpoints (for testing).
	BaseURL     string
	ViewBaseURL string
}

// Client is the public fetch surface: identifier resolution, batched property
// retrieval, and per-identifier result aggregation.
type Client struct {
	fetch       *client.Client
	baseURL     string
	viewBaseURL string
	logger      zerolog.Logger
}

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = BackendBadger
	}
	if cfg.CacheName == "" {
		cfg.CacheName = DefaultCacheName
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = ratelimit.DefaultRequestsPerSecond
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ViewBaseURL == "" {
		cfg.ViewBaseURL = DefaultViewBaseURL
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	ttl := cfg.CacheTTL
	switch {
	case ttl < 0:
		ttl = 0
	case ttl == 0 && cfg.CacheBackend == BackendMemory:
		ttl = 0
	case ttl == 0:
		ttl = cache.DefaultTTL
	}
	manager := cache.NewManager(store, cache.WithTTL(ttl))

	limiter, err := ratelimit.NewLimiter(cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	fetchCfg := client.DefaultConfig(manager, limiter)
	if cfg.UserAgent != "" {
		fetchCfg.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		fetchCfg.Timeout = cfg.Timeout
	}
	if cfg.Retry.MaxAttempts > 0 {
		fetchCfg.Retry = cfg.Retry
	}

	fetcher, err := client.New(fetchCfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		fetch:       fetcher,
		baseURL:     cfg.BaseURL,
		viewBaseURL: cfg.ViewBaseURL,
		logger:      log.With().Str("component", "pubchem").Logger(),
	}, nil
}

func newStore(cfg Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case BackendBadger:
		return cache.NewBadgerStore(cfg.CacheName)
	case BackendRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis client is required for the redis cache backend")
		}
		return cache.NewRedisStore(cfg.Redis), nil
	case BackendMemory:
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// Fetcher exposes the underlying fetch client (for the proxy binary and
// advanced callers).
func (c *Client) Fetcher() *client.Client {
	return c.fetch
}

// Close releases the cache backend.
func (c *Client) Close() error {
	return c.fetch.Close()
}
