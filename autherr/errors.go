// Package autherr defines the error kinds surfaced by bearer-token
// validation. Callers match kinds with errors.Is; wrapped detail is for
// diagnostics only and must never drive authorization decisions.
package autherr

import "errors"

var (
	// ErrConfigurationInvalid is returned when required provider settings
	// are missing at startup. It is fatal: the process must not serve
	// requests with invalid settings.
	ErrConfigurationInvalid = errors.New("provider settings invalid")

	// ErrUpstreamUnavailable is returned when the discovery document or
	// key set could not be fetched from the identity provider. The cache
	// stays empty so the next request retries.
	ErrUpstreamUnavailable = errors.New("identity provider unavailable")

	// ErrMalformedProviderMetadata is returned when the discovery document
	// is missing expected fields, such as jwks_uri.
	ErrMalformedProviderMetadata = errors.New("malformed provider metadata")

	// ErrMissingCredentials is returned when the Authorization header is
	// absent, not of the form "Bearer <token>", or carries an empty token.
	ErrMissingCredentials = errors.New("missing bearer credentials")

	// ErrMissingKeyID is returned when the token header carries no kid.
	ErrMissingKeyID = errors.New("token header missing key id")

	// ErrUnknownSigningKey is returned when no key in the published key
	// set matches the token's kid, after one forced refresh of the set.
	ErrUnknownSigningKey = errors.New("no signing key matches token key id")

	// ErrTokenRejected is returned when signature, issuer, audience, or
	// expiry validation failed for every acceptable issuer/audience
	// combination. It wraps the last attempt's cause.
	ErrTokenRejected = errors.New("token rejected")
)

// Kind returns a short stable name for err's kind, suitable for metrics
// labels and log fields.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrMissingKeyID):
		return "missing_key_id"
	case errors.Is(err, ErrUnknownSigningKey):
		return "unknown_signing_key"
	case errors.Is(err, ErrTokenRejected):
		return "token_rejected"
	case errors.Is(err, ErrMalformedProviderMetadata):
		return "malformed_provider_metadata"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrConfigurationInvalid):
		return "configuration_invalid"
	default:
		return "internal"
	}
}
