package integration

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chemfetch/pubchem-client/internal/testutil"
	"github.com/chemfetch/pubchem-client/pkg/cache"
	"github.com/chemfetch/pubchem-client/pkg/client"
	"github.com/chemfetch/pubchem-client/pkg/pubchem"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	// testcontainers panics (rather than returning an error) when no Docker
	// host can be detected; treat that the same as the error case below.
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Docker not available, skipping integration test: %v", r)
		}
	}()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

func newRedisClient(t *testing.T, redisClient *redis.Client, mock *testutil.MockPubChem, cfg pubchem.Config) *pubchem.Client {
	t.Helper()

	cfg.CacheBackend = pubchem.BackendRedis
	cfg.Redis = redisClient
	cfg.BaseURL = mock.BaseURL()
	cfg.ViewBaseURL = mock.ViewBaseURL()
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 10000
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = client.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 50 * time.Millisecond,
			MaxBackoff:     100 * time.Millisecond,
		}
	}

	pc, err := pubchem.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { pc.Close() })
	return pc
}

// TestFullRequestFlow tests the complete flow: rate limit, cache miss, fetch,
// cache store, then a cache hit shared across client instances.
func TestFullRequestFlow(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockPubChem()
	defer mock.Close()
	mock.RespondJSON("/rest/pug/compound/name/water/cids/JSON", testutil.CIDListBody(962))
	mock.RespondJSON("/rest/pug/compound/cid/962/property/MolecularWeight/JSON",
		testutil.PropertyTableBody("", `{"CID":962,"MolecularWeight":18.015}`))

	pc := newRedisClient(t, redisClient, mock, pubchem.Config{})
	ctx := context.Background()

	t.Log("Request 1: full flow, cache miss")
	rows, err := pc.GetProperties(ctx, []pubchem.Identifier{pubchem.Name("water")}, []string{"molecular_weight"})
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if rows[0].Status != pubchem.StatusOK || rows[0].Value("molecular_weight") != float64(18.015) {
		t.Fatalf("Unexpected row: %+v", rows[0])
	}
	if mock.RequestCount != 2 {
		t.Errorf("After request 1: live requests = %d, want 2", mock.RequestCount)
	}

	t.Log("Request 2: served entirely from cache")
	if _, err := pc.GetProperties(ctx, []pubchem.Identifier{pubchem.Name("water")}, []string{"molecular_weight"}); err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if mock.RequestCount != 2 {
		t.Errorf("After request 2: live requests = %d, want 2 (cached)", mock.RequestCount)
	}

	t.Log("Request 3: a second client shares the Redis cache")
	pc2 := newRedisClient(t, redisClient, mock, pubchem.Config{})
	if _, err := pc2.GetProperties(ctx, []pubchem.Identifier{pubchem.Name("water")}, []string{"molecular_weight"}); err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	if mock.RequestCount != 2 {
		t.Errorf("After request 3: live requests = %d, want 2 (shared cache)", mock.RequestCount)
	}
}

// TestStaleBusyRefresh tests that a cached 503 is invalidated and refreshed
// with exactly one live request.
func TestStaleBusyRefresh(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockPubChem()
	defer mock.Close()
	path := "/rest/pug/compound/name/water/cids/JSON"
	mock.RespondJSON(path, testutil.CIDListBody(962))

	ctx := context.Background()
	u := mock.BaseURL() + "/compound/name/water/cids/JSON"

	// Seed the shared cache with a stale "server busy" response, as a prior
	// run would have left behind.
	manager := cache.NewManager(cache.NewRedisStore(redisClient))
	stale := cache.NewEntry(http.StatusServiceUnavailable, nil, []byte(`{"Fault":{"Code":"PUGREST.ServerBusy"}}`))
	if err := manager.Set(ctx, cache.Key(u), stale); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	pc := newRedisClient(t, redisClient, mock, pubchem.Config{})

	outcome := pc.Fetcher().Fetch(ctx, u)
	if outcome.Kind != client.KindSuccess {
		t.Fatalf("Fetch outcome = %v (%v), want success after refresh", outcome.Kind, outcome.Err)
	}
	if mock.RequestsFor(path) != 1 {
		t.Errorf("Live requests = %d, want exactly 1 bypass refresh", mock.RequestsFor(path))
	}

	// The stale entry is gone and the bypass response was not written back.
	if _, err := manager.Get(ctx, cache.Key(u)); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Cache lookup after refresh = %v, want ErrCacheMiss", err)
	}
}

// TestRetry5xxErrors tests that 5xx errors trigger retries until success.
func TestRetry5xxErrors(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockPubChem()
	defer mock.Close()

	attempts := 0
	path := "/rest/pug/compound/cid/2244/property/MolecularWeight/JSON"
	mock.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "server error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testutil.PropertyTableBody("", `{"CID":2244,"MolecularWeight":180.16}`)))
	})

	pc := newRedisClient(t, redisClient, mock, pubchem.Config{})

	rows, err := pc.GetProperties(context.Background(),
		[]pubchem.Identifier{pubchem.CID(2244)}, []string{"molecular_weight"})
	if err != nil {
		t.Fatalf("Request failed after retries: %v", err)
	}
	if rows[0].Status != pubchem.StatusOK {
		t.Errorf("Status = %v, want OK after retries", rows[0].Status)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3 (2 retries + 1 success)", attempts)
	}
}

// TestNoRetry4xxErrors tests that 4xx responses do NOT trigger retries.
func TestNoRetry4xxErrors(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockPubChem()
	defer mock.Close()

	pc := newRedisClient(t, redisClient, mock, pubchem.Config{})

	rows, err := pc.GetProperties(context.Background(),
		[]pubchem.Identifier{pubchem.Name("no-such-compound")}, []string{"molecular_weight"})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if rows[0].Status != pubchem.StatusNotFound {
		t.Errorf("Status = %v, want NotFound", rows[0].Status)
	}

	path := "/rest/pug/compound/name/no-such-compound/cids/JSON"
	if mock.RequestsFor(path) != 1 {
		t.Errorf("Live requests = %d, want 1 (no retries for 4xx)", mock.RequestsFor(path))
	}
}

// TestCacheExpiration tests that expired cache entries trigger a live refetch.
func TestCacheExpiration(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockPubChem()
	defer mock.Close()
	path := "/rest/pug/compound/name/water/cids/JSON"
	mock.RespondJSON(path, testutil.CIDListBody(962))

	pc := newRedisClient(t, redisClient, mock, pubchem.Config{CacheTTL: time.Second})
	ctx := context.Background()

	if res := pc.Resolve(ctx, pubchem.Name("water")); res.Kind != pubchem.Resolved {
		t.Fatalf("First resolution = %+v, want Resolved", res)
	}
	if mock.RequestsFor(path) != 1 {
		t.Fatalf("Live requests = %d, want 1", mock.RequestsFor(path))
	}

	// Within the TTL the cache answers.
	if res := pc.Resolve(ctx, pubchem.Name("water")); res.Kind != pubchem.Resolved {
		t.Fatalf("Cached resolution = %+v, want Resolved", res)
	}
	if mock.RequestsFor(path) != 1 {
		t.Errorf("Live requests = %d, want 1 (cached)", mock.RequestsFor(path))
	}

	time.Sleep(1500 * time.Millisecond)

	if res := pc.Resolve(ctx, pubchem.Name("water")); res.Kind != pubchem.Resolved {
		t.Fatalf("Post-expiry resolution = %+v, want Resolved", res)
	}
	if mock.RequestsFor(path) != 2 {
		t.Errorf("Live requests = %d, want 2 (entry expired)", mock.RequestsFor(path))
	}
}
