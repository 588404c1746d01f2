// Package discovery resolves and caches OP metadata via the OIDC discovery
// document (/.well-known/openid-configuration).
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-cleanhttp"
)

// ErrDiscovery is returned when the discovery document cannot be fetched or
// is missing required endpoints. It is distinct from credential and session
// errors so callers can report it as an infrastructure failure.
var ErrDiscovery = errors.New("discovery failed")

// Cache holds the last successfully discovered provider, keyed by issuer.
// It is safe for concurrent use and is meant to be constructed once and
// injected into each handler; the entry is replaced whenever the requested
// issuer differs from the cached one.
type Cache struct {
	mu       sync.Mutex
	client   *http.Client
	issuer   string
	provider *oidc.Provider
}

// NewCache creates an empty discovery cache backed by a pooled HTTP client.
func NewCache() *Cache {
	return &Cache{client: cleanhttp.DefaultPooledClient()}
}

// Provider returns the cached provider for the issuer, performing discovery
// on a miss or an issuer change. The lock is held across the network call so
// concurrent requests cannot stampede the well-known endpoint.
func (c *Cache) Provider(ctx context.Context, issuer string) (*oidc.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil && c.issuer == issuer {
		return c.provider, nil
	}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, c.client), issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: issuer %q: %v", ErrDiscovery, issuer, err)
	}

	c.provider = provider
	c.issuer = issuer
	return provider, nil
}

// HTTPClient returns the pooled client used for discovery, shared with the
// token and userinfo calls so they reuse the same connection pool.
func (c *Cache) HTTPClient() *http.Client {
	return c.client
}

// Clear drops the cached provider. Used by tests.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = nil
	c.issuer = ""
}
