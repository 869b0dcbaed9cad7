package entragrpc

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	entramiddleware "github.com/entrakit/go-entra-middleware"
	"github.com/entrakit/go-entra-middleware/autherr"
	"github.com/entrakit/go-entra-middleware/validator"
)

type stubValidator struct {
	err error
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (validator.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != "valid-token" {
		return nil, fmt.Errorf("%w: unexpected token", autherr.ErrTokenRejected)
	}
	return validator.Claims{"oid": "object-1", "preferred_username": "a@b.com"}, nil
}

func testGateway(t *testing.T, v entramiddleware.TokenValidator) *entramiddleware.Gateway {
	t.Helper()
	gateway, err := entramiddleware.New(entramiddleware.WithValidator(v))
	require.NoError(t, err)
	return gateway
}

func contextWithToken(token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestUnaryServerInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/svc.Service/Method"}

	t.Run("a valid token attaches the identity", func(t *testing.T) {
		interceptor := New(testGateway(t, stubValidator{}))

		resp, err := interceptor.UnaryServerInterceptor()(contextWithToken("valid-token"), nil, info,
			func(ctx context.Context, req interface{}) (interface{}, error) {
				record, ok := IdentityFromContext(ctx)
				require.True(t, ok)
				return record.ID, nil
			})

		require.NoError(t, err)
		assert.Equal(t, "object-1", resp)
	})

	t.Run("missing metadata is unauthenticated", func(t *testing.T) {
		interceptor := New(testGateway(t, stubValidator{}))

		_, err := interceptor.UnaryServerInterceptor()(context.Background(), nil, info,
			func(ctx context.Context, req interface{}) (interface{}, error) {
				t.Fatal("handler must not run")
				return nil, nil
			})

		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("a rejected token is unauthenticated", func(t *testing.T) {
		interceptor := New(testGateway(t, stubValidator{}))

		_, err := interceptor.UnaryServerInterceptor()(contextWithToken("forged-token"), nil, info,
			func(ctx context.Context, req interface{}) (interface{}, error) { return nil, nil })

		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("upstream trouble is unavailable", func(t *testing.T) {
		upstreamErr := fmt.Errorf("%w: status 503", autherr.ErrUpstreamUnavailable)
		interceptor := New(testGateway(t, stubValidator{err: upstreamErr}))

		_, err := interceptor.UnaryServerInterceptor()(contextWithToken("valid-token"), nil, info,
			func(ctx context.Context, req interface{}) (interface{}, error) { return nil, nil })

		assert.Equal(t, codes.Unavailable, status.Code(err))
	})

	t.Run("excluded methods skip authentication", func(t *testing.T) {
		interceptor := New(testGateway(t, stubValidator{}),
			WithExclusionChecker(func(fullMethod string) bool {
				return strings.HasPrefix(fullMethod, "/grpc.health.")
			}))

		healthInfo := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		resp, err := interceptor.UnaryServerInterceptor()(context.Background(), nil, healthInfo,
			func(ctx context.Context, req interface{}) (interface{}, error) {
				_, ok := IdentityFromContext(ctx)
				assert.False(t, ok)
				return "ok", nil
			})

		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s fakeServerStream) Context() context.Context { return s.ctx }

func TestStreamServerInterceptor(t *testing.T) {
	info := &grpc.StreamServerInfo{FullMethod: "/svc.Service/Stream"}

	t.Run("a valid token attaches the identity to the stream context", func(t *testing.T) {
		interceptor := New(testGateway(t, stubValidator{}))
		stream := fakeServerStream{ctx: contextWithToken("valid-token")}

		err := interceptor.StreamServerInterceptor()(nil, stream, info,
			func(srv interface{}, ss grpc.ServerStream) error {
				record, ok := IdentityFromContext(ss.Context())
				require.True(t, ok)
				assert.Equal(t, "object-1", record.ID)
				return nil
			})

		require.NoError(t, err)
	})

	t.Run("a missing token fails the stream", func(t *testing.T) {
		interceptor := New(testGateway(t, stubValidator{}))
		stream := fakeServerStream{ctx: context.Background()}

		err := interceptor.StreamServerInterceptor()(nil, stream, info,
			func(srv interface{}, ss grpc.ServerStream) error {
				t.Fatal("handler must not run")
				return nil
			})

		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestMetadataTokenExtractor(t *testing.T) {
	t.Run("no metadata means no token", func(t *testing.T) {
		token, err := MetadataTokenExtractor(context.Background())
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("a bearer value yields the token", func(t *testing.T) {
		token, err := MetadataTokenExtractor(contextWithToken("i-am-a-token"))
		require.NoError(t, err)
		assert.Equal(t, "i-am-a-token", token)
	})

	t.Run("a non-bearer value is malformed", func(t *testing.T) {
		md := metadata.Pairs("authorization", "Basic dXNlcjpwYXNz")
		ctx := metadata.NewIncomingContext(context.Background(), md)

		_, err := MetadataTokenExtractor(ctx)
		require.ErrorIs(t, err, autherr.ErrMissingCredentials)
	})
}
