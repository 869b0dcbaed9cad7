package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/sync/singleflight"

	"github.com/entrakit/go-entra-middleware/autherr"
	"github.com/entrakit/go-entra-middleware/internal/oidc"
	"github.com/entrakit/go-entra-middleware/settings"
)

// defaultTimeout bounds every outbound call to the identity provider.
// Fetches are never retried; a failed fetch fails the current request and
// leaves the cache empty for the next caller.
const defaultTimeout = 5 * time.Second

// maxResponseBytes limits JWKS and discovery response bodies. Real key
// sets are a few kilobytes.
const maxResponseBytes = 1 << 20

// Provider fetches the discovery document and key set of a tenant without
// caching. Most callers want CachingProvider; the plain Provider is useful
// in tests and single-shot tools.
type Provider struct {
	Client *http.Client
}

// NewProvider builds a Provider with a bounded-timeout HTTP client unless
// one is supplied via WithHTTPClient.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		Client: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// DiscoveryDocument fetches the provider metadata for s.
func (p *Provider) DiscoveryDocument(ctx context.Context, s *settings.Settings) (*oidc.DiscoveryDocument, error) {
	return oidc.GetDiscoveryDocument(ctx, p.Client, s.DiscoveryURL)
}

// KeySet fetches the JWKS for s, resolving the JWKS URL through the
// discovery document unless an explicit URL is configured.
func (p *Provider) KeySet(ctx context.Context, s *settings.Settings) (jwk.Set, error) {
	jwksURL := s.JWKSURL
	if jwksURL == "" {
		doc, err := p.DiscoveryDocument(ctx, s)
		if err != nil {
			return nil, err
		}
		jwksURL = doc.JWKSURI
	}

	return p.fetchKeySet(ctx, jwksURL)
}

func (p *Provider) fetchKeySet(ctx context.Context, jwksURL string) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get key set: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not get key set from %s: %v", autherr.ErrUpstreamUnavailable, jwksURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: key set request returned status %d", autherr.ErrUpstreamUnavailable, resp.StatusCode)
	}

	set, err := jwk.ParseReader(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse key set: %v", autherr.ErrUpstreamUnavailable, err)
	}

	return set, nil
}

// CachingProvider memoizes the discovery document and key set per settings
// identity for the process lifetime. Population is single-flight: N
// concurrent first-use callers trigger exactly one outbound fetch, the
// rest wait for the in-flight result. There is no TTL; keys rotate rarely
// and FindKey refreshes once on a kid miss to cover rotation.
//
// A CachingProvider is safe for concurrent use and for sharing across
// multiple tenant settings.
type CachingProvider struct {
	*Provider

	group singleflight.Group

	mu   sync.RWMutex
	docs map[string]*oidc.DiscoveryDocument
	sets map[string]jwk.Set
}

// NewCachingProvider builds an empty CachingProvider.
func NewCachingProvider(opts ...Option) *CachingProvider {
	return &CachingProvider{
		Provider: NewProvider(opts...),
		docs:     map[string]*oidc.DiscoveryDocument{},
		sets:     map[string]jwk.Set{},
	}
}

// DiscoveryDocument returns the cached document for s, fetching it once on
// first use.
func (c *CachingProvider) DiscoveryDocument(ctx context.Context, s *settings.Settings) (*oidc.DiscoveryDocument, error) {
	key := s.CacheKey()

	c.mu.RLock()
	doc, ok := c.docs[key]
	c.mu.RUnlock()
	if ok {
		return doc, nil
	}

	v, err, _ := c.group.Do("discovery:"+key, func() (interface{}, error) {
		doc, err := c.Provider.DiscoveryDocument(ctx, s)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.docs[key] = doc
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*oidc.DiscoveryDocument), nil
}

// KeySet returns the cached key set for s, fetching it once on first use.
func (c *CachingProvider) KeySet(ctx context.Context, s *settings.Settings) (jwk.Set, error) {
	c.mu.RLock()
	set, ok := c.sets[s.CacheKey()]
	c.mu.RUnlock()
	if ok {
		return set, nil
	}

	return c.refreshKeySet(ctx, s)
}

// refreshKeySet fetches the key set unconditionally and replaces the cached
// entry. The last-fetched set wins; sets are never merged across fetches.
func (c *CachingProvider) refreshKeySet(ctx context.Context, s *settings.Settings) (jwk.Set, error) {
	key := s.CacheKey()

	v, err, _ := c.group.Do("jwks:"+key, func() (interface{}, error) {
		jwksURL := s.JWKSURL
		if jwksURL == "" {
			doc, err := c.DiscoveryDocument(ctx, s)
			if err != nil {
				return nil, err
			}
			jwksURL = doc.JWKSURI
		}

		set, err := c.fetchKeySet(ctx, jwksURL)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.sets[key] = set
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(jwk.Set), nil
}

// FindKey resolves kid in the cached key set for s. On a miss it forces
// exactly one refresh of the set, since the provider may have rotated keys
// since the set was cached, and then fails with
// autherr.ErrUnknownSigningKey if the kid is still absent.
func (c *CachingProvider) FindKey(ctx context.Context, s *settings.Settings, kid string) (jwk.Key, error) {
	set, err := c.KeySet(ctx, s)
	if err != nil {
		return nil, err
	}

	if key, ok := set.LookupKeyID(kid); ok {
		return key, nil
	}

	set, err = c.refreshKeySet(ctx, s)
	if err != nil {
		return nil, err
	}

	if key, ok := set.LookupKeyID(kid); ok {
		return key, nil
	}

	return nil, fmt.Errorf("%w: %q", autherr.ErrUnknownSigningKey, kid)
}

// Invalidate drops the cached discovery document and key set for s. The
// next caller repopulates them.
func (c *CachingProvider) Invalidate(s *settings.Settings) {
	key := s.CacheKey()

	c.mu.Lock()
	delete(c.docs, key)
	delete(c.sets, key)
	c.mu.Unlock()
}
