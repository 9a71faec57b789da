// Package config holds the environment-driven application configuration.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files for
// the available variables:
//   - auth.go: authentication mode and provider configuration
//   - database.go: PostgreSQL and Redis configuration
//   - http.go: HTTP server configuration
//   - upstream.go: marketplace API configuration
package config

import (
	"fmt"
	"strings"
	"time"
)

// VaultMode selects the backing store for session entries.
type VaultMode string

const (
	// VaultModeRedis stores session entries in Redis.
	VaultModeRedis VaultMode = "redis"
	// VaultModePostgres stores session entries in PostgreSQL.
	VaultModePostgres VaultMode = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for VaultMode.
func (v *VaultMode) UnmarshalText(text []byte) error {
	mode := strings.ToLower(string(text))
	switch mode {
	case "redis", "postgres":
		*v = VaultMode(mode)
		return nil
	default:
		return fmt.Errorf("invalid VaultMode: %q (valid options: redis, postgres)", mode)
	}
}

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
type AppConfig struct {
	// IsDev controls development mode behavior.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth configuration.
	Auth AuthConfig

	// Upstream marketplace API configuration.
	Upstream UpstreamConfig `envPrefix:"UPSTREAM_"`

	// Vault selects where session entries live.
	Vault VaultMode `env:"SESSION_VAULT" envDefault:"redis"`

	// TokenTTL is the fallback session token lifetime when the upstream
	// response does not carry one.
	TokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"24h"`

	// Database configuration.
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration.
	HTTP HTTPConfig

	// Reaper configuration.
	Reaper ReaperConfig `envPrefix:"REAPER_"`
}

// ReaperConfig controls the expired session entry sweeper. It only applies
// to the PostgreSQL vault; Redis entries expire on their own.
type ReaperConfig struct {
	Enabled  bool          `env:"ENABLED"  envDefault:"true"`
	Interval time.Duration `env:"INTERVAL" envDefault:"10m"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	const minInterval = time.Minute
	if r.Interval < minInterval {
		r.Interval = minInterval
	}
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment
// variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Upstream.Sanitize()
	c.Reaper.Sanitize()

	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
}
