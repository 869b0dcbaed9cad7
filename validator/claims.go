package validator

import (
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/entrakit/go-entra-middleware/settings"
)

// Claims is the verified claim set of a token, keyed by claim name. It is
// produced only after signature, issuer, audience, and expiry validation
// succeed, and lives for a single request.
type Claims map[string]interface{}

// Candidate is one acceptable (audience, issuer) combination.
type Candidate struct {
	Audience string
	Issuer   string
}

// Candidates returns the acceptable combinations in the order they are
// attempted: audiences outer, issuers inner, first success wins. Entra ID
// stamps either the v2 issuer or the legacy v1 issuer depending on the app
// registration's token version, and the audience may be the Application ID
// URI or the bare client ID.
func Candidates(s *settings.Settings) []Candidate {
	audiences := []string{s.Audience, s.ClientID}
	issuers := []string{s.Issuer, s.LegacyIssuer()}

	candidates := make([]Candidate, 0, len(audiences)*len(issuers))
	for _, aud := range audiences {
		for _, iss := range issuers {
			candidates = append(candidates, Candidate{Audience: aud, Issuer: iss})
		}
	}
	return candidates
}

func claimsOf(token jwt.Token) Claims {
	claims := Claims{}
	for name, value := range token.PrivateClaims() {
		claims[name] = value
	}

	if v := token.Issuer(); v != "" {
		claims["iss"] = v
	}
	if v := token.Subject(); v != "" {
		claims["sub"] = v
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims["aud"] = aud
	}
	if v := token.Expiration(); !v.IsZero() {
		claims["exp"] = v
	}
	if v := token.IssuedAt(); !v.IsZero() {
		claims["iat"] = v
	}
	if v := token.NotBefore(); !v.IsZero() {
		claims["nbf"] = v
	}
	if v := token.JwtID(); v != "" {
		claims["jti"] = v
	}

	return claims
}
