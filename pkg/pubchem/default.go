package pubchem

import (
	"context"
	"fmt"
	"sync"
)

// The package-level default client is a convenience for callers that do not
// need explicit wiring. It self-initializes on first use with the documented
// defaults: persistent file cache "pubchem_cache", one-week TTL, 5 requests
// per second. Library code should construct its own Client via New.
var (
	defaultMu     sync.Mutex
	defaultClient *Client
	defaultConfig Config
)

// Configure sets the configuration used by the package-level default client.
// It must be called before the first package-level fetch; afterwards it
// returns an error instead of silently ignoring the new settings.
func Configure(cfg Config) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient != nil {
		return fmt.Errorf("default client already initialized; Configure must be called before first use")
	}
	defaultConfig = cfg
	return nil
}

// Default returns the package-level client, initializing it on first use.
func Default() (*Client, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient == nil {
		c, err := New(defaultConfig)
		if err != nil {
			return nil, err
		}
		defaultClient = c
	}
	return defaultClient, nil
}

// GetProperties is the package-level convenience form of Client.GetProperties.
func GetProperties(ctx context.Context, identifiers []Identifier, properties []string) ([]Row, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.GetProperties(ctx, identifiers, properties)
}

// GetCompound is the package-level convenience form of Client.GetCompound.
func GetCompound(ctx context.Context, id Identifier) (*Compound, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.GetCompound(ctx, id)
}
