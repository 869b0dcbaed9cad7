package entramiddleware

import "errors"

// Option configures the Gateway. Options that receive nil values fail so
// misconfiguration surfaces at startup.
type Option func(*Gateway) error

// Sentinel errors for configuration validation.
var (
	ErrValidatorNil      = errors.New("validator cannot be nil (use WithValidator)")
	ErrErrorHandlerNil   = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil = errors.New("tokenExtractor cannot be nil")
	ErrLoggerNil         = errors.New("logger cannot be nil")
	ErrMetricsNil        = errors.New("metrics cannot be nil")
	ErrTracerNil         = errors.New("tracer cannot be nil")
)

// WithValidator sets the token validator (REQUIRED). Typically a
// *validator.Validator wired to a jwks.CachingProvider.
func WithValidator(v TokenValidator) Option {
	return func(g *Gateway) error {
		if v == nil {
			return ErrValidatorNil
		}
		g.validator = v
		return nil
	}
}

// WithErrorHandler sets the handler called when authentication fails.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(g *Gateway) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		g.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function that extracts the bearer token from
// the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(g *Gateway) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		g.tokenExtractor = e
		return nil
	}
}

// WithCredentialsOptional sets whether requests without credentials pass
// through unauthenticated instead of failing.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(g *Gateway) error {
		g.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests are authenticated.
//
// Default: true
func WithValidateOnOptions(value bool) Option {
	return func(g *Gateway) error {
		g.validateOnOptions = value
		return nil
	}
}

// WithLogger sets an optional logger used throughout the authentication
// flow.
func WithLogger(logger Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			return ErrLoggerNil
		}
		g.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink for authentication counters and
// latency.
//
// Default: NoopMetrics
func WithMetrics(m Metrics) Option {
	return func(g *Gateway) error {
		if m == nil {
			return ErrMetricsNil
		}
		g.metrics = m
		return nil
	}
}

// WithTracer sets the tracer spanning each authentication attempt.
//
// Default: NoopTracer
func WithTracer(t Tracer) Option {
	return func(g *Gateway) error {
		if t == nil {
			return ErrTracerNil
		}
		g.tracer = t
		return nil
	}
}
