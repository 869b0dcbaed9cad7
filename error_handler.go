package entramiddleware

import (
	"errors"
	"net/http"

	"github.com/entrakit/go-entra-middleware/autherr"
)

// ErrorHandler is called when authentication fails. The err carries one of
// the autherr kinds; match with errors.Is. The default handler returns 401
// for every authentication failure and 500 for anything else. If you
// implement your own ErrorHandler you MUST take the error kinds into
// consideration, as not properly responding to them could result in the
// gateway not functioning as intended.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler writes a JSON unauthorized response with a
// human-readable reason. It never exposes claim values or stack traces.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, autherr.ErrMissingCredentials):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authorization header with a bearer token is required."}`))
	case errors.Is(err, autherr.ErrMissingKeyID),
		errors.Is(err, autherr.ErrUnknownSigningKey),
		errors.Is(err, autherr.ErrTokenRejected):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bearer token is invalid."}`))
	case errors.Is(err, autherr.ErrUpstreamUnavailable),
		errors.Is(err, autherr.ErrMalformedProviderMetadata):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unable to verify credentials against the identity provider."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking credentials."}`))
	}
}
