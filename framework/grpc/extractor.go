package entragrpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/entrakit/go-entra-middleware/autherr"
)

// TokenExtractor reads a bearer token from an incoming gRPC context. An
// empty token with a nil error means no credentials were supplied.
type TokenExtractor func(ctx context.Context) (string, error)

// MetadataTokenExtractor reads the token from the authorization metadata
// key, expecting the "Bearer <token>" form.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return "", nil
	}

	parts := strings.Fields(values[0])
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("%w: authorization metadata format must be Bearer {token}", autherr.ErrMissingCredentials)
	}

	return parts[1], nil
}
