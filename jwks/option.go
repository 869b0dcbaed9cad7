package jwks

import (
	"net/http"
	"time"
)

// Option configures a Provider or CachingProvider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client for outbound calls to the
// identity provider. The client should carry a short timeout; fetches are
// never retried.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.Client = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no
// effect when WithHTTPClient is also used.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout > 0 {
			p.Client = &http.Client{Timeout: timeout}
		}
	}
}
