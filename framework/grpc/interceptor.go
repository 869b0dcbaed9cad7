// Package entragrpc adapts the gateway to gRPC server interceptors. The
// bearer token travels in the authorization metadata key.
package entragrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	entramiddleware "github.com/entrakit/go-entra-middleware"
	"github.com/entrakit/go-entra-middleware/autherr"
	"github.com/entrakit/go-entra-middleware/identity"
)

// ExclusionChecker reports whether a full method name is excluded from
// authentication (health checks, reflection).
type ExclusionChecker func(fullMethod string) bool

// Interceptor authenticates unary and stream calls through the gateway.
type Interceptor struct {
	gateway        *entramiddleware.Gateway
	tokenExtractor TokenExtractor
	exclusion      ExclusionChecker
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithTokenExtractor overrides how the token is read from the incoming
// context.
//
// Default: MetadataTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) {
		if e != nil {
			i.tokenExtractor = e
		}
	}
}

// WithExclusionChecker skips authentication for matching methods.
func WithExclusionChecker(c ExclusionChecker) Option {
	return func(i *Interceptor) {
		i.exclusion = c
	}
}

// New builds an Interceptor around the gateway.
func New(gateway *entramiddleware.Gateway, opts ...Option) *Interceptor {
	i := &Interceptor{
		gateway:        gateway,
		tokenExtractor: MetadataTokenExtractor,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// authenticate extracts and validates the token, returning a context
// carrying the identity.
func (i *Interceptor) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	if i.exclusion != nil && i.exclusion(fullMethod) {
		return ctx, nil
	}

	token, err := i.tokenExtractor(ctx)
	if err != nil {
		return nil, statusFromAuthError(err)
	}

	record, err := i.gateway.AuthenticateToken(ctx, token)
	if err != nil {
		return nil, statusFromAuthError(err)
	}

	if record == nil {
		// Credentials optional and none supplied.
		return ctx, nil
	}

	return entramiddleware.ContextWithIdentity(ctx, record), nil
}

// statusFromAuthError maps autherr kinds onto gRPC status codes. Upstream
// trouble is Unavailable; everything else is Unauthenticated.
func statusFromAuthError(err error) error {
	if errors.Is(err, autherr.ErrUpstreamUnavailable) || errors.Is(err, autherr.ErrMalformedProviderMetadata) {
		return status.Errorf(codes.Unavailable, "unable to verify credentials: %v", err)
	}
	return status.Errorf(codes.Unauthenticated, "%v", err)
}

// UnaryServerInterceptor returns a unary interceptor that authenticates
// each call.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		authCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authCtx, req)
	}
}

// StreamServerInterceptor returns a stream interceptor that authenticates
// each stream.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		authCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: authCtx})
	}
}

// wrappedServerStream overrides the stream context with the authenticated
// one.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// IdentityFromContext returns the identity attached by the interceptor.
func IdentityFromContext(ctx context.Context) (*identity.Record, bool) {
	return entramiddleware.IdentityFromContext(ctx)
}
