// Package settings holds the immutable, process-lifetime configuration for
// a Microsoft Entra ID (Azure AD) tenant that this module validates tokens
// against.
package settings

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/entrakit/go-entra-middleware/autherr"
)

// Settings describes the identity provider a validator trusts. TenantID and
// ClientID are required; every other field has a tenant-derived default.
type Settings struct {
	// TenantID is the Entra ID directory (tenant) identifier.
	TenantID string `env:"ENTRA_TENANT_ID"`

	// ClientID is the application (client) identifier of the relying party.
	ClientID string `env:"ENTRA_CLIENT_ID"`

	// Issuer is the expected v2 token issuer. Defaults to
	// https://login.microsoftonline.com/{tenant}/v2.0.
	Issuer string `env:"ENTRA_ISSUER"`

	// DiscoveryURL is the OpenID Connect discovery document URL. Defaults
	// to the tenant's v2 .well-known/openid-configuration endpoint.
	DiscoveryURL string `env:"ENTRA_OPENID_CONFIG_URL"`

	// JWKSURL, when set, is fetched directly, skipping discovery.
	JWKSURL string `env:"ENTRA_JWKS_URI"`

	// Audience is the expected audience, usually an Application ID URI of
	// the form api://{client}. Defaults to ClientID.
	Audience string `env:"ENTRA_AUDIENCE"`
}

// Option configures optional Settings fields.
type Option func(*Settings)

// WithIssuer overrides the expected v2 issuer.
func WithIssuer(issuer string) Option {
	return func(s *Settings) { s.Issuer = issuer }
}

// WithDiscoveryURL overrides the discovery document URL.
func WithDiscoveryURL(u string) Option {
	return func(s *Settings) { s.DiscoveryURL = u }
}

// WithJWKSURL sets an explicit JWKS URL, skipping discovery.
func WithJWKSURL(u string) Option {
	return func(s *Settings) { s.JWKSURL = u }
}

// WithAudience overrides the expected audience.
func WithAudience(audience string) Option {
	return func(s *Settings) { s.Audience = audience }
}

// New builds Settings for the given tenant and client, applying defaults
// for everything not overridden by options. It fails fast with
// autherr.ErrConfigurationInvalid when tenantID or clientID is empty.
func New(tenantID, clientID string, opts ...Option) (*Settings, error) {
	s := &Settings{
		TenantID: tenantID,
		ClientID: clientID,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.applyDefaults()

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// FromEnv builds Settings from ENTRA_* environment variables, loading a
// .env file first when one is present. Missing required variables fail
// with autherr.ErrConfigurationInvalid.
func FromEnv() (*Settings, error) {
	// A missing .env file is not an error; the environment may be the
	// only source.
	_ = godotenv.Load()

	s := &Settings{}
	if err := envdecode.Decode(s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("%w: %v", autherr.ErrConfigurationInvalid, err)
	}

	s.applyDefaults()

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Settings) applyDefaults() {
	if s.TenantID == "" {
		return
	}
	if s.Issuer == "" {
		s.Issuer = fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", s.TenantID)
	}
	if s.DiscoveryURL == "" {
		s.DiscoveryURL = fmt.Sprintf(
			"https://login.microsoftonline.com/%s/v2.0/.well-known/openid-configuration", s.TenantID)
	}
	if s.Audience == "" {
		s.Audience = s.ClientID
	}
}

func (s *Settings) validate() error {
	if s.TenantID == "" {
		return fmt.Errorf("%w: tenant id is required", autherr.ErrConfigurationInvalid)
	}
	if s.ClientID == "" {
		return fmt.Errorf("%w: client id is required", autherr.ErrConfigurationInvalid)
	}
	return nil
}

// LegacyIssuer returns the v1 issuer some Entra ID tokens still carry.
// It is derived from the tenant, never configured.
func (s *Settings) LegacyIssuer() string {
	return fmt.Sprintf("https://sts.windows.net/%s/", s.TenantID)
}

// CacheKey identifies these settings for cache memoization so that
// multiple tenant configurations can coexist in one process.
func (s *Settings) CacheKey() string {
	return s.TenantID + "|" + s.ClientID + "|" + s.DiscoveryURL + "|" + s.JWKSURL
}
