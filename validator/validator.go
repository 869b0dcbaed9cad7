package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/entrakit/go-entra-middleware/autherr"
	"github.com/entrakit/go-entra-middleware/settings"
)

// Signature algorithms accepted via WithSignatureAlgorithm. Entra ID signs
// access and ID tokens with RS256; the others cover uncommon provider
// configurations.
const (
	RS256 = SignatureAlgorithm("RS256")
	RS384 = SignatureAlgorithm("RS384")
	RS512 = SignatureAlgorithm("RS512")
	PS256 = SignatureAlgorithm("PS256")
	PS384 = SignatureAlgorithm("PS384")
	PS512 = SignatureAlgorithm("PS512")
	ES256 = SignatureAlgorithm("ES256")
	ES384 = SignatureAlgorithm("ES384")
	ES512 = SignatureAlgorithm("ES512")
)

// SignatureAlgorithm is an asymmetric signature algorithm name.
type SignatureAlgorithm string

var supportedSignatureAlgorithms = map[SignatureAlgorithm]bool{
	RS256: true,
	RS384: true,
	RS512: true,
	PS256: true,
	PS384: true,
	PS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
}

// KeyProvider resolves the signing key a token names in its kid header.
// *jwks.CachingProvider satisfies it.
type KeyProvider interface {
	FindKey(ctx context.Context, s *settings.Settings, kid string) (jwk.Key, error)
}

// Validator verifies bearer tokens issued by an Entra ID tenant. It
// accepts both protocol generations the provider may stamp on a token:
// the configured v2 issuer and the legacy sts.windows.net issuer, and the
// configured audience and the bare client ID. Every individual check stays
// fully strict; only the menu of acceptable issuer/audience values widens.
type Validator struct {
	settings  *settings.Settings
	keys      KeyProvider
	allowed   map[jwa.SignatureAlgorithm]bool
	clock     jwt.Clock
	clockSkew time.Duration
}

// New builds a Validator for the given tenant settings and key provider.
// RS256 is the only algorithm accepted unless WithSignatureAlgorithm adds
// more.
func New(s *settings.Settings, keys KeyProvider, opts ...Option) (*Validator, error) {
	if s == nil {
		return nil, errors.New("settings are required but were nil")
	}
	if keys == nil {
		return nil, errors.New("key provider is required but was nil")
	}

	v := &Validator{
		settings: s,
		keys:     keys,
		allowed: map[jwa.SignatureAlgorithm]bool{
			jwa.RS256: true,
		},
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return v, nil
}

// ValidateToken verifies tokenString and returns its claims. Failures
// carry exactly one autherr kind: ErrMissingKeyID when the header has no
// kid, ErrUnknownSigningKey when no published key matches, and
// ErrTokenRejected when signature, issuer, audience, or expiry validation
// failed for every acceptable issuer/audience combination, wrapping the
// last attempt's cause.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (Claims, error) {
	hdr, err := parseUnverifiedHeader(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrTokenRejected, err)
	}
	if hdr.KeyID == "" {
		return nil, autherr.ErrMissingKeyID
	}
	if !v.allowed[hdr.Algorithm] {
		return nil, fmt.Errorf("%w: signing algorithm %q is not allowed", autherr.ErrTokenRejected, hdr.Algorithm)
	}

	key, err := v.keys.FindKey(ctx, v.settings, hdr.KeyID)
	if err != nil {
		return nil, err
	}

	// The signature does not depend on the issuer/audience pair, so it is
	// checked once, against the key the kid named and the declared
	// algorithm only.
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(hdr.Algorithm, key),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrTokenRejected, err)
	}

	// All candidate combinations share one clock sample.
	now := v.now()
	clock := jwt.ClockFunc(func() time.Time { return now })

	var lastErr error
	for _, candidate := range Candidates(v.settings) {
		err := jwt.Validate(token,
			jwt.WithIssuer(candidate.Issuer),
			jwt.WithAudience(candidate.Audience),
			jwt.WithClock(clock),
			jwt.WithAcceptableSkew(v.clockSkew),
		)
		if err == nil {
			return claimsOf(token), nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", autherr.ErrTokenRejected, lastErr)
}

func (v *Validator) now() time.Time {
	if v.clock != nil {
		return v.clock.Now()
	}
	return time.Now()
}

// unverifiedHeader is the algorithm and kid read from a token before any
// signature check. It selects the verification key and nothing else.
type unverifiedHeader struct {
	KeyID     string
	Algorithm jwa.SignatureAlgorithm
}

func parseUnverifiedHeader(tokenString string) (unverifiedHeader, error) {
	// Reject anything that is not a compact JWS before handing it to the
	// parser; Entra ID never issues encrypted tokens to relying parties.
	if strings.Count(tokenString, ".") != 2 {
		return unverifiedHeader{}, errors.New("token is not a compact JWS")
	}

	msg, err := jws.Parse([]byte(tokenString))
	if err != nil {
		return unverifiedHeader{}, fmt.Errorf("could not parse token: %w", err)
	}

	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return unverifiedHeader{}, errors.New("token carries no signature")
	}

	headers := sigs[0].ProtectedHeaders()
	return unverifiedHeader{
		KeyID:     headers.KeyID(),
		Algorithm: headers.Algorithm(),
	}, nil
}
