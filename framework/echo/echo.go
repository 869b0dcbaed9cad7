// Package entraecho adapts the gateway to the echo framework.
package entraecho

import (
	"net/http"

	"github.com/labstack/echo/v4"

	entramiddleware "github.com/entrakit/go-entra-middleware"
	"github.com/entrakit/go-entra-middleware/identity"
)

// DefaultIdentityKey is the echo context key the identity is stored under.
const DefaultIdentityKey = "identity"

// ErrorHandler handles authentication failures inside an echo handler
// chain.
type ErrorHandler func(c echo.Context, err error) error

type config struct {
	errorHandler ErrorHandler
	contextKey   string
}

// Option configures the echo middleware.
type Option func(*config)

// WithErrorHandler overrides the default unauthorized JSON response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextKey overrides the echo context key the identity is stored
// under.
func WithContextKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.contextKey = key
		}
	}
}

// Middleware returns an echo middleware that authenticates each request
// through the gateway. On success the identity is available both via
// Identity and via entramiddleware.IdentityFromContext on the request
// context.
func Middleware(gateway *entramiddleware.Gateway, opts ...Option) echo.MiddlewareFunc {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultIdentityKey,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			record, err := gateway.Authenticate(c.Request())
			if err != nil {
				return cfg.errorHandler(c, err)
			}

			if record != nil {
				c.Set(cfg.contextKey, record)
				ctx := entramiddleware.ContextWithIdentity(c.Request().Context(), record)
				c.SetRequest(c.Request().Clone(ctx))
			}

			return next(c)
		}
	}
}

func defaultErrorHandler(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"message": err.Error(),
	})
}

// Identity extracts the validated identity from the echo context.
func Identity(c echo.Context, contextKey string) (*identity.Record, bool) {
	if contextKey == "" {
		contextKey = DefaultIdentityKey
	}

	record, ok := c.Get(contextKey).(*identity.Record)
	return record, ok
}
