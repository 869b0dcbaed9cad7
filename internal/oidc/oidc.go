// Package oidc fetches the OpenID Connect discovery document that
// advertises, among other things, the provider's JWKS location.
package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/entrakit/go-entra-middleware/autherr"
)

// DiscoveryDocument holds the provider metadata this module reads. Only
// jwks_uri is required; issuer is retained for diagnostics.
type DiscoveryDocument struct {
	Issuer  string `json:"issuer,omitempty"`
	JWKSURI string `json:"jwks_uri"`
}

// GetDiscoveryDocument fetches and decodes the discovery document at
// discoveryURL. Transport failures and non-success statuses surface as
// autherr.ErrUpstreamUnavailable; a document without jwks_uri surfaces as
// autherr.ErrMalformedProviderMetadata.
func GetDiscoveryDocument(ctx context.Context, client *http.Client, discoveryURL string) (*DiscoveryDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get discovery document: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not get discovery document from %s: %v", autherr.ErrUpstreamUnavailable, discoveryURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: discovery document request returned status %d", autherr.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var doc DiscoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: could not decode discovery document: %v", autherr.ErrMalformedProviderMetadata, err)
	}

	if doc.JWKSURI == "" {
		return nil, fmt.Errorf("%w: discovery document has no jwks_uri", autherr.ErrMalformedProviderMetadata)
	}

	return &doc, nil
}
