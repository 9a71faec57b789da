package marketapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/proxymarket/admin-api/internal/ports"
)

// loginPayload is the upstream success payload for POST /admin/login.
type loginPayload struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expiresIn"`
	User      json.RawMessage `json:"user"`
}

// Authenticator implements ports.Authenticator against the marketplace API.
// Errors returned from Login already carry the human-readable message the
// session service exposes to the dashboard.
type Authenticator struct {
	client *Client
}

// NewAuthenticator wraps a Client as an Authenticator.
func NewAuthenticator(client *Client) *Authenticator {
	return &Authenticator{client: client}
}

var _ ports.Authenticator = (*Authenticator)(nil)

func (a *Authenticator) Login(ctx context.Context, creds ports.Credentials) (ports.LoginData, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	data, err := a.client.Do(ctx, http.MethodPost, "/admin/login", "", body)
	if err != nil {
		return ports.LoginData{}, err
	}

	var payload loginPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ports.LoginData{}, envelopeError(http.StatusOK, "")
	}
	return ports.LoginData{
		Token:     payload.Token,
		ExpiresIn: payload.ExpiresIn,
		Profile:   payload.User,
	}, nil
}

func (a *Authenticator) Logout(ctx context.Context, token string) error {
	_, err := a.client.Do(ctx, http.MethodPost, "/admin/logout", token, nil)
	return err
}
