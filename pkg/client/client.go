// Package client provides the resilient PubChem HTTP fetch layer: rate
// limiting, response caching, failure classification, and bounded retry.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chemfetch/pubchem-client/pkg/cache"
	"github.com/chemfetch/pubchem-client/pkg/ratelimit"
)

// Prometheus metrics for fetch operations.
var (
	pubchemRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchem_requests_total",
		Help: "Total PubChem requests by endpoint and status",
	}, []string{"endpoint", "status"})

	pubchemRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pubchem_request_duration_seconds",
		Help:    "PubChem request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	pubchemErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchem_errors_total",
		Help: "Total PubChem errors by class",
	}, []string{"class"})

	pubchemStaleBusyRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pubchem_stale_busy_refresh_total",
		Help: "Cached 503 responses invalidated and refreshed with a live request",
	})
)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 15 * time.Second

// Client is the retrying fetcher. All PubChem traffic goes through Fetch so
// that rate limiting, caching, and retry policy apply uniformly.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Cache is the response cache manager (required).
	Cache *cache.Manager

	// Limiter gates outbound request timing (required).
	Limiter *ratelimit.Limiter

	// UserAgent identifies this client to PubChem.
	UserAgent string

	// Timeout is the per-request timeout (default 15s).
	Timeout time.Duration

	// Retry configures the backoff policy.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration over the given cache
// manager and limiter.
func DefaultConfig(cacheManager *cache.Manager, limiter *ratelimit.Limiter) Config {
	return Config{
		Cache:     cacheManager,
		Limiter:   limiter,
		UserAgent: "pubchem-client/1.0 (github.com/chemfetch/pubchem-client)",
		Timeout:   DefaultTimeout,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new fetch client.
func New(cfg Config) (*Client, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache manager is required")
	}
	if cfg.Limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:   cfg.Cache,
		limiter: cfg.Limiter,
		config:  cfg,
		logger:  log.With().Str("component", "pubchem-client").Logger(),
	}, nil
}

// response is the transport-level result of one request, live or cached.
type response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	FromCache  bool
}

// Fetch retrieves a URL with rate limiting, caching, and bounded retry.
// 4xx responses are definitive and yield KindAbsent without retrying; 5xx and
// network errors are retried with exponential backoff until MaxAttempts, after
// which the outcome is KindFailed wrapping ErrRetryExhausted. Retries are not
// observable by callers.
func (c *Client) Fetch(ctx context.Context, url string) Outcome {
	endpoint := endpointLabel(url)
	key := cache.Key(url)

	startTime := time.Now()
	defer func() {
		pubchemRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	retry := c.config.Retry
	backoff := retry.InitialBackoff
	var lastErr error
	var lastClass ErrorClass

	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return failed(err)
		}

		resp, err := c.execute(ctx, url, key, false)

		// A cached 503 may be stale: the server was busy when the entry was
		// written but may be healthy now. Invalidate the entry and give one
		// fresh bypass-cache request a chance before backing off.
		if err == nil && resp.FromCache && resp.StatusCode == http.StatusServiceUnavailable {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Msg("Cached 503 is stale, refreshing with live request")
			pubchemStaleBusyRefreshTotal.Inc()

			if delErr := c.cache.Delete(ctx, key); delErr != nil {
				c.logger.Warn().Err(delErr).Str("endpoint", endpoint).Msg("Cache invalidation failed")
			}
			resp, err = c.execute(ctx, url, key, true)
		}

		if err != nil {
			if ctx.Err() != nil {
				return failed(ctx.Err())
			}
			lastErr = err
			lastClass = ErrorClassNetwork
			pubchemErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			pubchemRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Warn().Err(err).
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("Request failed")
		} else {
			pubchemRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			if resp.StatusCode == http.StatusOK {
				if attempt > 1 {
					c.logger.Info().
						Str("endpoint", endpoint).
						Int("attempt", attempt).
						Msg("Request succeeded after retry")
				}
				return c.parse(resp)
			}

			class := classifyStatus(resp.StatusCode)
			pubchemErrorsTotal.WithLabelValues(string(class)).Inc()

			if !shouldRetry(class) {
				// Definitive client-side outcome. Retrying wastes quota.
				c.logger.Debug().
					Str("endpoint", endpoint).
					Int("status", resp.StatusCode).
					Msg("Definitive absent response")
				return absent()
			}

			lastErr = &RequestError{
				StatusCode: resp.StatusCode,
				ErrorClass: class,
				Message:    http.StatusText(resp.StatusCode),
			}
			lastClass = class
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Msg("Server error")
		}

		if attempt >= retry.MaxAttempts {
			break
		}

		sleep := retry.withJitter(backoff)
		pubchemRetriesTotal.WithLabelValues(string(lastClass)).Inc()
		pubchemRetryBackoffSeconds.WithLabelValues(string(lastClass)).Observe(sleep.Seconds())

		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Dur("backoff", sleep).
			Msg("Retrying after backoff")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return failed(ctx.Err())
		case <-timer.C:
		}
		backoff = retry.next(backoff)
	}

	pubchemRetryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("max_attempts", retry.MaxAttempts).
		Msg("Retry attempts exhausted")

	return failed(fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, retry.MaxAttempts, lastErr))
}

// FetchBytes retrieves a binary endpoint (structure images) through the rate
// limiter. The response is not cached and not parsed.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bytes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	return io.ReadAll(resp.Body)
}

// execute performs one request, serving from cache unless bypass is set.
// Bypass disables both the cache read and the cache write, so a refresh after
// a stale 503 observes exactly what the live service returns.
func (c *Client) execute(ctx context.Context, url, key string, bypass bool) (*response, error) {
	if !bypass {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			return &response{
				StatusCode: entry.StatusCode,
				Headers:    entry.Headers,
				Body:       entry.Data,
				FromCache:  true,
			}, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache get error")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if !bypass && c.cache.Cacheable(resp.StatusCode) {
		entry := cache.NewEntry(resp.StatusCode, resp.Header, body)
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
		}
	}

	return &response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		FromCache:  false,
	}, nil
}

// parse decodes a 200 response body by declared content type.
func (c *Client) parse(resp *response) Outcome {
	contentType := strings.ToLower(resp.Headers.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		var doc any
		if err := json.Unmarshal(resp.Body, &doc); err != nil {
			c.logger.Error().Err(err).Msg("Malformed JSON response")
			return failed(fmt.Errorf("%w: %v", ErrParse, err))
		}
		return success(doc, "")
	}
	return success(nil, string(resp.Body))
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// endpointLabel reduces a URL to a low-cardinality endpoint class for metric
// labels, so compound names and CIDs do not blow up the label space.
func endpointLabel(url string) string {
	switch {
	case strings.Contains(url, "/pug_view/"):
		return "view"
	case strings.Contains(url, "/cids/"):
		return "cids"
	case strings.Contains(url, "/property/"):
		return "property"
	case strings.Contains(url, "/synonyms/"):
		return "synonyms"
	case strings.HasSuffix(url, "/PNG"):
		return "image"
	default:
		return "other"
	}
}

// Cache returns the cache manager (for testing and cache administration).
func (c *Client) Cache() *cache.Manager {
	return c.cache
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Close releases the cache backend.
func (c *Client) Close() error {
	return c.cache.Close()
}
