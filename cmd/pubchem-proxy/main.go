package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/chemfetch/pubchem-client/pkg/client"
	"github.com/chemfetch/pubchem-client/pkg/logging"
	"github.com/chemfetch/pubchem-client/pkg/pubchem"
)

func main() {
	logger := logging.Setup(logging.FromEnv())

	// Configuration from environment
	backend := pubchem.Backend(getEnv("CACHE_BACKEND", string(pubchem.BackendBadger)))
	cacheName := getEnv("CACHE_DIR", pubchem.DefaultCacheName)
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "pubchem-proxy/0.1.0")

	cfg := pubchem.Config{
		CacheBackend: backend,
		CacheName:    cacheName,
		UserAgent:    userAgent,
	}

	var redisClient *redis.Client
	if backend == pubchem.BackendRedis {
		redisURL := getEnv("REDIS_URL", "localhost:6379")
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")
		cfg.Redis = redisClient
	}

	pc, err := pubchem.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create PubChem client")
	}
	defer pc.Close()

	// HTTP Server
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/pubchem/", pubchemProxyHandler(pc, pubchem.DefaultBaseURL))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("cache_backend", string(backend)).
		Str("user_agent", userAgent).
		Msg("Starting PubChem proxy server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness. With a nil redis client (badger or memory
// backend) readiness equals liveness.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// pubchemProxyHandler forwards requests under /pubchem/ to PUG-REST through
// the caching, rate-limited client.
// Example: /pubchem/compound/name/water/cids/JSON
func pubchemProxyHandler(pc *pubchem.Client, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.TrimPrefix(r.URL.Path, "/pubchem")
		u := baseURL + endpoint
		if r.URL.RawQuery != "" {
			u += "?" + r.URL.RawQuery
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		outcome := pc.Fetcher().Fetch(ctx, u)
		switch outcome.Kind {
		case client.KindSuccess:
			if outcome.JSON != nil {
				w.Header().Set("Content-Type", "application/json")
				if err := json.NewEncoder(w).Encode(outcome.JSON); err != nil {
					return
				}
				return
			}
			fmt.Fprint(w, outcome.Text)

		case client.KindAbsent:
			http.Error(w, "not found", http.StatusNotFound)

		default:
			http.Error(w, fmt.Sprintf("upstream request failed: %v", outcome.Err), http.StatusBadGateway)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
