package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for rate limiting.
var (
	pubchemRateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pubchem_rate_limit_waits_total",
		Help: "Total number of requests that had to wait for the rate limiter",
	})

	pubchemRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pubchem_rate_limit_wait_seconds",
		Help:    "Time spent waiting for the rate limiter",
		Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1},
	})
)

// DefaultRequestsPerSecond is the PubChem usage policy limit.
const DefaultRequestsPerSecond = 5.0

// Limiter gates outbound requests to a minimum interval between calls.
// The last-call timestamp is shared mutable state; it is guarded by a mutex so
// concurrent callers cannot violate the minimum-interval guarantee.
type Limiter struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
	clock    Clock
	logger   zerolog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects a custom clock (for testing).
func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// NewLimiter creates a limiter allowing at most requestsPerSecond calls.
func NewLimiter(requestsPerSecond float64, opts ...Option) (*Limiter, error) {
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive (got %g)", requestsPerSecond)
	}

	l := &Limiter{
		interval: time.Duration(float64(time.Second) / requestsPerSecond),
		clock:    realClock{},
		logger:   log.With().Str("component", "ratelimit").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Interval returns the minimum interval between permitted calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until at least the minimum interval has elapsed since the start
// of the previous permitted call, then records the new call time. It returns
// early with the context error if the context is cancelled during the wait.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if !l.last.IsZero() {
		if wait := l.interval - now.Sub(l.last); wait > 0 {
			pubchemRateLimitWaitsTotal.Inc()
			pubchemRateLimitWaitSeconds.Observe(wait.Seconds())

			l.logger.Debug().
				Dur("wait", wait).
				Msg("Rate limit reached, waiting")

			if err := l.clock.Sleep(ctx, wait); err != nil {
				return err
			}
			now = l.clock.Now()
		}
	}

	l.last = now
	return nil
}
