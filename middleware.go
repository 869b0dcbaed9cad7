package entramiddleware

import (
	"context"
	"net/http"
	"time"

	"github.com/entrakit/go-entra-middleware/autherr"
	"github.com/entrakit/go-entra-middleware/identity"
	"github.com/entrakit/go-entra-middleware/validator"
)

// TokenValidator validates a raw bearer token and returns its verified
// claims. *validator.Validator satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (validator.Claims, error)
}

// Gateway authenticates inbound requests: it extracts the bearer token,
// validates it, projects the verified claims into an identity.Record, and
// places the record in the request context. Validator failures propagate
// with their autherr kind unchanged; there is no retry at this layer.
type Gateway struct {
	validator           TokenValidator
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	credentialsOptional bool
	validateOnOptions   bool
	logger              Logger
	metrics             Metrics
	tracer              Tracer
}

// New constructs a Gateway. WithValidator is required.
//
//	gateway, err := entramiddleware.New(
//	    entramiddleware.WithValidator(jwtValidator),
//	    entramiddleware.WithLogger(entramiddleware.NewLogrusLogger(log)),
//	)
func New(opts ...Option) (*Gateway, error) {
	g := &Gateway{
		validateOnOptions: true,
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if g.validator == nil {
		return nil, ErrValidatorNil
	}

	if g.errorHandler == nil {
		g.errorHandler = DefaultErrorHandler
	}
	if g.tokenExtractor == nil {
		g.tokenExtractor = AuthHeaderTokenExtractor
	}
	if g.metrics == nil {
		g.metrics = &NoopMetrics{}
	}
	if g.tracer == nil {
		g.tracer = &NoopTracer{}
	}

	return g, nil
}

// Authenticate extracts and validates the bearer credentials on r and
// returns the normalized identity. When credentials are optional and none
// were supplied it returns (nil, nil).
func (g *Gateway) Authenticate(r *http.Request) (*identity.Record, error) {
	token, err := g.tokenExtractor(r)
	if err != nil {
		return nil, err
	}

	return g.AuthenticateToken(r.Context(), token)
}

// AuthenticateToken validates a raw bearer token without transport
// framing. Non-HTTP adapters (gRPC) call this directly.
func (g *Gateway) AuthenticateToken(ctx context.Context, token string) (*identity.Record, error) {
	if token == "" {
		if g.credentialsOptional {
			return nil, nil
		}
		return nil, autherr.ErrMissingCredentials
	}

	claims, err := g.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return identity.Project(claims), nil
}

// CheckAuth wraps next with bearer-token authentication. On success the
// identity.Record is available via IdentityFromContext; on failure the
// configured ErrorHandler writes the response and next never runs.
func (g *Gateway) CheckAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.validateOnOptions && r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		span := g.tracer.StartSpan("entra.authenticate")
		start := time.Now()

		record, err := g.Authenticate(r)
		if err != nil {
			kind := autherr.Kind(err)
			if g.logger != nil {
				g.logger.Warnf("authentication failed (%s): %v", kind, err)
			}
			g.metrics.IncCounter("entra_auth_failures_total", map[string]string{"reason": kind})
			span.SetTag("auth_status", kind)
			span.Finish()

			g.errorHandler(w, r, err)
			return
		}

		g.metrics.IncCounter("entra_auth_success_total", map[string]string{})
		g.metrics.ObserveHistogram("entra_auth_duration_seconds", time.Since(start).Seconds(), map[string]string{})
		span.SetTag("auth_status", "success")
		span.Finish()

		if record == nil {
			// Credentials optional and none supplied.
			next.ServeHTTP(w, r)
			return
		}

		if g.logger != nil {
			g.logger.Debugf("authenticated subject %s", record.ID)
		}
		next.ServeHTTP(w, r.Clone(ContextWithIdentity(r.Context(), record)))
	})
}
