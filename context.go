package entramiddleware

import (
	"context"

	"github.com/entrakit/go-entra-middleware/identity"
)

// contextKey is unexported so only this package can create the key,
// eliminating collisions with other packages.
type contextKey int

const identityKey contextKey = iota

// ContextWithIdentity returns a copy of ctx carrying the validated
// identity.
func ContextWithIdentity(ctx context.Context, record *identity.Record) context.Context {
	return context.WithValue(ctx, identityKey, record)
}

// IdentityFromContext returns the validated identity placed in ctx by the
// gateway, or false when the request was not authenticated.
func IdentityFromContext(ctx context.Context) (*identity.Record, bool) {
	record, ok := ctx.Value(identityKey).(*identity.Record)
	return record, ok
}
