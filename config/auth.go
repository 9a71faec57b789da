package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeUpstream verifies credentials against the marketplace API.
	AuthModeUpstream AuthMode = "upstream"
	// AuthModeDev uses a single in-process account (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "upstream", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: upstream, dev)", v)
	}
}

// DevAuthConfig controls the development-only login account.
// Used when AUTH_MODE=dev.
type DevAuthConfig struct {
	Email    string `env:"EMAIL"    envDefault:"dev@proxymarket.local"`
	Password string `env:"PASSWORD" envDefault:"dev-password"`
	Name     string `env:"NAME"     envDefault:"Dev Admin"`
	Role     string `env:"ROLE"     envDefault:"super_admin"`
}

// SSOConfig contains the optional OIDC single-sign-on configuration.
// SSO is enabled when IssuerURL is set.
type SSOConfig struct {
	IssuerURL    string `env:"ISSUER_URL"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/sso/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
}

// Enabled reports whether SSO sign-in should be wired.
func (s SSOConfig) Enabled() bool {
	return strings.TrimSpace(s.IssuerURL) != ""
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"upstream"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SSO configuration (optional, independent of Mode).
	SSO SSOConfig `envPrefix:"SSO_"`
}
