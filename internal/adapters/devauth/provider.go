// Package devauth provides a config-driven Authenticator for local
// development. It never talks to the marketplace API.
package devauth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/proxymarket/admin-api/internal/errors"
	"github.com/proxymarket/admin-api/internal/ports"
)

// Config controls the dev authenticator. PasswordHash is a bcrypt hash;
// a plain Password may be given instead and is hashed at construction.
type Config struct {
	Email        string
	Password     string
	PasswordHash string
	Name         string
	Role         string
	// TokenLifetime defaults to 8h when zero.
	TokenLifetime time.Duration
}

// Provider implements ports.Authenticator with a single configured admin.
type Provider struct {
	email         string
	passwordHash  []byte
	profile       json.RawMessage
	tokenLifetime time.Duration
}

var _ ports.Authenticator = (*Provider)(nil)

// NewProvider constructs a dev authenticator from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, errors.New("dev auth: Password or PasswordHash is required")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = h
	}
	role := cfg.Role
	if role == "" {
		role = "Admin"
	}
	name := cfg.Name
	if name == "" {
		name = "Dev Admin"
	}
	lifetime := cfg.TokenLifetime
	if lifetime == 0 {
		lifetime = 8 * time.Hour
	}

	profile, err := json.Marshal(map[string]string{
		"id":    "dev",
		"email": cfg.Email,
		"name":  name,
		"role":  role,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{
		email:         cfg.Email,
		passwordHash:  hash,
		profile:       profile,
		tokenLifetime: lifetime,
	}, nil
}

// Login checks the configured credentials and mints a random local token.
// Rejections carry the same message shape the marketplace API produces so
// the dashboard behaves identically in both modes.
func (p *Provider) Login(_ context.Context, creds ports.Credentials) (ports.LoginData, error) {
	if !strings.EqualFold(strings.TrimSpace(creds.Email), p.email) {
		return ports.LoginData{}, apperrors.Unauthenticated("Identifiants invalides")
	}
	if err := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(creds.Password)); err != nil {
		return ports.LoginData{}, apperrors.Unauthenticated("Identifiants invalides")
	}

	token, err := randomToken(32)
	if err != nil {
		return ports.LoginData{}, err
	}
	return ports.LoginData{
		Token:     token,
		ExpiresIn: int(p.tokenLifetime / time.Second),
		Profile:   append(json.RawMessage(nil), p.profile...),
	}, nil
}

// Logout is a no-op; there is no upstream session to invalidate.
func (p *Provider) Logout(context.Context, string) error {
	return nil
}
