package pubchem

import (
	"testing"
	"time"

	"github.com/chemfetch/pubchem-client/internal/testutil"
	"github.com/chemfetch/pubchem-client/pkg/client"
)

// newTestClient builds a client pointed at the mock server with a volatile
// cache, no effective rate limit, and near-instant retry backoff.
func newTestClient(t *testing.T, mock *testutil.MockPubChem) *Client {
	t.Helper()

	c, err := New(Config{
		CacheBackend:      BackendMemory,
		BaseURL:           mock.BaseURL(),
		ViewBaseURL:       mock.ViewBaseURL(),
		RequestsPerSecond: 10000,
		Retry: client.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}
