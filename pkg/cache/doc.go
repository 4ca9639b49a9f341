// Package cache provides HTTP response caching for PubChem requests.
//
// Responses are cached by request URL with a configurable entry lifetime
// (default one week). Only a fixed set of status codes is persisted
// (200, 400, 404, 503): definitive client-side outcomes and server-busy
// responses are cached alongside successes so that repeated lookups of
// missing or throttled identifiers do not hammer the remote service.
//
// Three backends are available:
//
//   - BadgerStore: embedded persistent file cache (the default)
//   - RedisStore: shared cache for multi-process deployments
//   - MemoryStore: volatile in-process cache for ephemeral use
//
// # Basic Usage
//
//	store, err := cache.NewBadgerStore("pubchem_cache")
//	if err != nil {
//		return err
//	}
//	manager := cache.NewManager(store)
//
//	key := cache.Key(url)
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch live and manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - pubchem_cache_hits_total{backend} - Cache hits
//   - pubchem_cache_misses_total - Cache misses
//   - pubchem_cache_size_bytes{backend} - Bytes written to the cache
//   - pubchem_cache_errors_total{operation} - Cache operation errors
package cache
