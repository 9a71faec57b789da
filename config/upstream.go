package config

import "time"

// UpstreamConfig contains the marketplace API configuration.
type UpstreamConfig struct {
	// BaseURL is the root of the marketplace API.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000/api"`

	// Timeout bounds every upstream request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to upstream configuration values.
func (u *UpstreamConfig) Sanitize() {
	if u.Timeout <= 0 {
		u.Timeout = 30 * time.Second
	}
}
