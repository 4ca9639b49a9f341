package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubchem_cache_hits_total",
			Help: "Total number of PubChem cache hits",
		},
		[]string{"backend"}, // "badger", "redis", "memory"
	)

	// CacheMisses tracks cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pubchem_cache_misses_total",
			Help: "Total number of PubChem cache misses",
		},
	)

	// CacheSize tracks bytes written to the cache by backend.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pubchem_cache_size_bytes",
			Help: "Bytes written to the PubChem cache",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubchem_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
