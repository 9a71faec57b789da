package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/proxymarket/admin-api/internal/domain/auth"
	apperrors "github.com/proxymarket/admin-api/internal/errors"
	"github.com/proxymarket/admin-api/internal/ports"
)

// DefaultTokenTTL is the token lifetime applied when the upstream login
// response does not carry one.
const DefaultTokenTTL = 24 * time.Hour

// genericLoginError is shown when the upstream rejects a login without a
// usable message.
const genericLoginError = "Échec de la connexion"

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Auth   ports.Authenticator
	Vault  ports.Vault
	Logger *slog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration
}

// SessionService owns the authenticated-identity lifecycle: login, logout,
// restoration, token-expiry enforcement, role normalization, and profile
// patching. Each browser session is a scope; the token record and profile
// are persisted as two independent vault entries per scope.
//
// Every failure mode except a rejected login is absorbed and degrades the
// scope to the unauthenticated state; none of the methods panic or return
// transport errors to callers.
type SessionService struct {
	auth     ports.Authenticator
	vault    ports.Vault
	logger   *slog.Logger
	clock    func() time.Time
	tokenTTL time.Duration
}

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		auth:     opts.Auth,
		vault:    opts.Vault,
		logger:   logger,
		clock:    clock,
		tokenTTL: ttl,
	}
}

// Snapshot is the read-only identity state exposed to route guards and
// handlers. The token record never leaves the service.
type Snapshot struct {
	Authenticated bool
	User          *domainauth.Identity
}

// LoginResult is the only failure-bearing result shape the service exposes.
type LoginResult struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error,omitempty"`
	User    *domainauth.Identity `json:"user,omitempty"`
}

func tokenKey(scope string) string   { return "session:" + scope + ":token" }
func profileKey(scope string) string { return "session:" + scope + ":profile" }

// loginErrorMessage keeps only the human-readable part of a collaborator
// error; wrapped transport causes never reach the dashboard.
func loginErrorMessage(err error) string {
	var appErr *apperrors.AppError
	msg := ""
	if errors.As(err, &appErr) {
		msg = appErr.Message
	} else {
		msg = err.Error()
	}
	if strings.TrimSpace(msg) == "" {
		msg = genericLoginError
	}
	return msg
}

// Restore reconstructs the session state for a scope from the vault.
// It requires both entries present, parseable, and a token expiry strictly
// in the future; anything else clears both entries and yields the
// unauthenticated snapshot. The restored profile is re-normalized and
// re-persisted so stale role formats heal themselves.
func (s *SessionService) Restore(ctx context.Context, scope string) Snapshot {
	rec, ok := s.readToken(ctx, scope)
	if !ok {
		s.clear(ctx, scope)
		return Snapshot{}
	}

	raw, found, err := s.vault.Get(ctx, profileKey(scope))
	if err != nil || !found {
		s.clear(ctx, scope)
		return Snapshot{}
	}

	identity, err := domainauth.DecodeProfile([]byte(raw))
	if err != nil {
		s.logger.DebugContext(ctx, "discarding unreadable session profile", "scope", scope, "error", err)
		s.clear(ctx, scope)
		return Snapshot{}
	}

	// Re-persist the decoded profile so stale role formats heal on the
	// next read.
	s.persistProfile(ctx, scope, identity, rec)
	return Snapshot{Authenticated: true, User: &identity}
}

// Login verifies credentials through the authentication collaborator and,
// on success, persists the token record and normalized profile. Failures of
// any kind come back as a LoginResult with a human-readable message; state
// is left untouched on failure.
func (s *SessionService) Login(ctx context.Context, scope, email, password string) LoginResult {
	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{Error: genericLoginError}
	}

	data, err := s.auth.Login(ctx, ports.Credentials{Email: email, Password: password})
	if err != nil {
		return LoginResult{Error: loginErrorMessage(err)}
	}
	return s.install(ctx, scope, data)
}

// CompleteSSO installs a session from data produced by a single-sign-on
// exchange. Persistence and failure semantics match password login.
func (s *SessionService) CompleteSSO(ctx context.Context, scope string, data ports.LoginData) LoginResult {
	return s.install(ctx, scope, data)
}

func (s *SessionService) install(ctx context.Context, scope string, data ports.LoginData) LoginResult {
	if strings.TrimSpace(data.Token) == "" || len(data.Profile) == 0 {
		return LoginResult{Error: genericLoginError}
	}

	identity, err := domainauth.DecodeProfile(data.Profile)
	if err != nil {
		s.logger.WarnContext(ctx, "login succeeded with unusable profile payload", "error", err)
		return LoginResult{Error: genericLoginError}
	}

	now := s.clock()
	rec := domainauth.TokenRecord{Token: data.Token, ExpiresAt: now.Add(s.tokenTTL).UnixMilli()}
	if data.ExpiresIn > 0 {
		rec.ExpiresAt = now.UnixMilli() + int64(data.ExpiresIn)*1000
	}

	// Two independent writes; a crash in between can leave a token without
	// a profile. Restoration treats that as no session.
	if err := s.writeJSON(ctx, tokenKey(scope), rec, rec); err != nil {
		s.clear(ctx, scope)
		return LoginResult{Error: genericLoginError}
	}
	if err := s.writeJSON(ctx, profileKey(scope), identity, rec); err != nil {
		s.clear(ctx, scope)
		return LoginResult{Error: genericLoginError}
	}

	return LoginResult{Success: true, User: &identity}
}

// Logout tells the collaborator to invalidate the upstream session
// (best-effort) and unconditionally clears both vault entries. It always
// succeeds from the caller's perspective.
func (s *SessionService) Logout(ctx context.Context, scope string) {
	if rec, ok := s.readToken(ctx, scope); ok {
		if err := s.auth.Logout(ctx, rec.Token); err != nil {
			s.logger.DebugContext(ctx, "upstream logout failed", "scope", scope, "error", err)
		}
	}
	s.clear(ctx, scope)
}

// UpdateUser merges a partial profile update into the current identity and
// persists the result. It is a no-op returning nil when the scope has no
// authenticated identity. The token record is never touched.
func (s *SessionService) UpdateUser(ctx context.Context, scope string, patch domainauth.ProfilePatch) *domainauth.Identity {
	rec, ok := s.readToken(ctx, scope)
	if !ok {
		return nil
	}
	raw, found, err := s.vault.Get(ctx, profileKey(scope))
	if err != nil || !found {
		return nil
	}
	updated, err := domainauth.MergeProfile([]byte(raw), patch)
	if err != nil {
		return nil
	}
	s.persistProfile(ctx, scope, updated, rec)
	return &updated
}

// Token returns the bearer token for a scope when a non-expired record
// exists. Used by the upstream proxy layer, never exposed over HTTP.
func (s *SessionService) Token(ctx context.Context, scope string) (string, bool) {
	rec, ok := s.readToken(ctx, scope)
	if !ok {
		return "", false
	}
	return rec.Token, true
}

// readToken loads and validates the token record; expired or unreadable
// records count as absent.
func (s *SessionService) readToken(ctx context.Context, scope string) (domainauth.TokenRecord, bool) {
	raw, found, err := s.vault.Get(ctx, tokenKey(scope))
	if err != nil {
		s.logger.DebugContext(ctx, "vault read failed", "scope", scope, "error", err)
		return domainauth.TokenRecord{}, false
	}
	if !found {
		return domainauth.TokenRecord{}, false
	}
	rec, err := domainauth.DecodeTokenRecord([]byte(raw))
	if err != nil {
		return domainauth.TokenRecord{}, false
	}
	if !rec.Valid(s.clock()) {
		return domainauth.TokenRecord{}, false
	}
	return rec, true
}

func (s *SessionService) persistProfile(ctx context.Context, scope string, identity domainauth.Identity, rec domainauth.TokenRecord) {
	if err := s.writeJSON(ctx, profileKey(scope), identity, rec); err != nil {
		s.logger.WarnContext(ctx, "persist profile failed", "scope", scope, "error", err)
	}
}

// writeJSON stores v under key with a TTL matching the token expiry, so
// vault backends prune entries on their own once the token is dead.
func (s *SessionService) writeJSON(ctx context.Context, key string, v any, rec domainauth.TokenRecord) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ttl := time.UnixMilli(rec.ExpiresAt).Sub(s.clock())
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.vault.Set(ctx, key, string(data), ttl)
}

func (s *SessionService) clear(ctx context.Context, scope string) {
	if err := s.vault.Delete(ctx, tokenKey(scope), profileKey(scope)); err != nil {
		s.logger.DebugContext(ctx, "vault clear failed", "scope", scope, "error", err)
	}
}
