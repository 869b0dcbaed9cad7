// Package entragin adapts the gateway to the gin framework.
package entragin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	entramiddleware "github.com/entrakit/go-entra-middleware"
	"github.com/entrakit/go-entra-middleware/identity"
)

// DefaultIdentityKey is the gin context key the identity is stored under.
const DefaultIdentityKey = "identity"

var (
	ErrMissingIdentity = errors.New("no identity found in context")
	ErrInvalidIdentity = errors.New("invalid identity type in context")
)

// ErrorHandler handles authentication failures inside a gin handler chain.
type ErrorHandler func(c *gin.Context, err error)

type config struct {
	errorHandler ErrorHandler
	contextKey   string
}

// Option configures the gin middleware.
type Option func(*config)

// WithErrorHandler overrides the default unauthorized JSON response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextKey overrides the gin context key the identity is stored
// under.
func WithContextKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.contextKey = key
		}
	}
}

// Middleware returns a gin handler that authenticates each request
// through the gateway and aborts the chain on failure.
func Middleware(gateway *entramiddleware.Gateway, opts ...Option) gin.HandlerFunc {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultIdentityKey,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		record, err := gateway.Authenticate(c.Request)
		if err != nil {
			cfg.errorHandler(c, err)
			c.Abort()
			return
		}

		if record != nil {
			c.Set(cfg.contextKey, record)
			ctx := entramiddleware.ContextWithIdentity(c.Request.Context(), record)
			c.Request = c.Request.Clone(ctx)
		}

		c.Next()
	}
}

func defaultErrorHandler(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message": err.Error(),
	})
}

// Identity extracts the validated identity from the gin context.
func Identity(c *gin.Context, contextKey string) (*identity.Record, error) {
	if contextKey == "" {
		contextKey = DefaultIdentityKey
	}

	value, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingIdentity
	}

	record, ok := value.(*identity.Record)
	if !ok {
		return nil, ErrInvalidIdentity
	}

	return record, nil
}
