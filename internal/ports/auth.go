// Package ports defines interfaces (hexagonal ports) for auth-related
// behavior. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.
package ports

import (
	"context"
	"encoding/json"
	"time"
)

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// LoginData is a successful answer from the authentication collaborator.
// Profile is the raw user payload exactly as the collaborator returned it;
// the session service owns its normalization.
type LoginData struct {
	Token string
	// ExpiresIn is the token lifetime in seconds; zero means the
	// collaborator did not say and the default lifetime applies.
	ExpiresIn int
	Profile   json.RawMessage
}

// Authenticator verifies credentials against the upstream marketplace API
// and invalidates server-side sessions on logout.
//
// Login errors must already carry a human-readable message; the session
// service exposes them verbatim and never surfaces transport errors.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (LoginData, error)

	// Logout is best-effort; callers ignore its error.
	Logout(ctx context.Context, token string) error
}

// Vault is the persisted string key-value storage behind session state.
// A zero TTL means the entry does not expire on its own.
type Vault interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SSOProvider initiates and completes a single-sign-on flow for admin
// sign-in, as an alternative to password login.
type SSOProvider interface {
	// Begin starts the flow and returns the provider auth URL, an opaque
	// state, and a nonce.
	Begin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)

	// Exchange completes the flow and returns the raw profile payload plus
	// token data, in the same shape password login produces.
	Exchange(ctx context.Context, in ExchangeInput) (LoginData, error)
}

// ExchangeInput groups parameters for the SSO code exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}
