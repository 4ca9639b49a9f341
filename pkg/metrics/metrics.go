// Package metrics provides the centralized Prometheus metrics registry for
// the PubChem client. All metrics are defined in their respective packages
// (client, cache, ratelimit) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the PubChem client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - pubchem_rate_limit_waits_total (Counter): Requests that had to wait for the minimum interval
//   - pubchem_rate_limit_wait_seconds (Histogram): Time spent waiting for the rate limiter
//
// Cache Metrics (pkg/cache):
//   - pubchem_cache_hits_total{backend} (Counter): Cache hits by backend (badger, redis, memory)
//   - pubchem_cache_misses_total (Counter): Cache misses
//   - pubchem_cache_size_bytes{backend} (Gauge): Bytes written to the cache by backend
//   - pubchem_cache_errors_total{operation} (Counter): Cache operation errors (get, set, delete)
//
// Request Metrics (pkg/client):
//   - pubchem_requests_total{endpoint, status} (Counter): Total requests by endpoint class and HTTP status
//   - pubchem_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint class
//   - pubchem_errors_total{class} (Counter): Errors by class (client, server, network)
//   - pubchem_stale_busy_refresh_total (Counter): Cached 503 responses invalidated and refreshed live
//
// Retry Metrics (pkg/client):
//   - pubchem_retries_total{error_class} (Counter): Retry attempts by error class
//   - pubchem_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - pubchem_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pubchem_cache_hits_total[5m])) /
//   (sum(rate(pubchem_cache_hits_total[5m])) + sum(rate(pubchem_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(pubchem_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(pubchem_request_duration_seconds_bucket[5m]))
//
//   # Stale 503 Refresh Rate
//   rate(pubchem_stale_busy_refresh_total[5m])
