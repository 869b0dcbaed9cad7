package validator

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Option configures a Validator.
type Option func(*Validator) error

// WithSignatureAlgorithm adds algorithms to the accepted set. RS256 is
// always accepted.
func WithSignatureAlgorithm(algs ...SignatureAlgorithm) Option {
	return func(v *Validator) error {
		for _, alg := range algs {
			if !supportedSignatureAlgorithms[alg] {
				return fmt.Errorf("unsupported signature algorithm %q", alg)
			}
			v.allowed[jwa.SignatureAlgorithm(alg)] = true
		}
		return nil
	}
}

// WithClock sets the clock used for expiry validation. All candidate
// combinations of a single ValidateToken call share one sample of it.
func WithClock(clock jwt.Clock) Option {
	return func(v *Validator) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		v.clock = clock
		return nil
	}
}

// WithAllowedClockSkew tolerates skew between this process and the
// issuer's clock when checking exp, nbf, and iat.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return fmt.Errorf("clock skew cannot be negative")
		}
		v.clockSkew = skew
		return nil
	}
}
