// Package oidc provides the optional SSO sign-in for dashboard admins,
// built on OIDC/OAuth2. The exchanged identity flows through the same
// profile normalization password logins use.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/proxymarket/admin-api/internal/ports"
)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string
	// HTTPClient is optional and defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// Provider implements ports.SSOProvider using OIDC/OAuth2.
type Provider struct {
	config   *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	provider *gooidc.Provider
}

var _ ports.SSOProvider = (*Provider)(nil)

// NewProvider creates an OIDC provider; a single discovery fetch happens
// here.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("oidc: client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("oidc: redirect URL is required")
	}
	if cfg.IssuerURL == "" {
		return nil, errors.New("oidc: issuer URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	issuer := strings.TrimSuffix(strings.TrimRight(cfg.IssuerURL, "/"), "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}
	return &Provider{
		provider: op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
	}, nil
}

// Begin starts the flow with fresh state and nonce.
func (p *Provider) Begin(_ context.Context, redirectURL string) (string, string, string, error) {
	if redirectURL == "" {
		return "", "", "", errors.New("oidc: redirect URL is required")
	}
	state, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// idClaims is the subset of ID-token claims the dashboard cares about.
// Role may be any shape; the session core normalizes it.
type idClaims struct {
	Sub   string          `json:"sub"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  json.RawMessage `json:"role"`
	Nonce string          `json:"nonce"`
}

// Exchange completes the flow and returns the identity in the same shape
// password login produces: the access token plus a raw profile payload.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.LoginData, error) {
	if in.Code == "" {
		return ports.LoginData{}, errors.New("oidc: authorization code is required")
	}
	if in.State == "" {
		return ports.LoginData{}, errors.New("oidc: state is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return ports.LoginData{}, fmt.Errorf("exchange code for token: %w", err)
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return ports.LoginData{}, errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.LoginData{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idClaims
	if err := idTok.Claims(&claims); err != nil {
		return ports.LoginData{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if in.Nonce != "" && claims.Nonce != in.Nonce {
		return ports.LoginData{}, errors.New("invalid nonce")
	}

	profile := map[string]any{
		"id":    claims.Sub,
		"email": claims.Email,
		"name":  claims.Name,
	}
	if len(claims.Role) > 0 {
		profile["role"] = claims.Role
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return ports.LoginData{}, fmt.Errorf("encode profile: %w", err)
	}

	expiresIn := 0
	if !token.Expiry.IsZero() {
		expiresIn = int(time.Until(token.Expiry) / time.Second)
	}
	return ports.LoginData{
		Token:     token.AccessToken,
		ExpiresIn: expiresIn,
		Profile:   payload,
	}, nil
}

// randomString generates a cryptographically secure URL-safe random string
// of exact length.
func randomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
