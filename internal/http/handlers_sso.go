package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/proxymarket/admin-api/internal/ports"
	"github.com/proxymarket/admin-api/internal/service"
)

// SSOSessionInstaller installs login data produced by an SSO exchange.
// *service.SessionService satisfies it.
type SSOSessionInstaller interface {
	CompleteSSO(ctx context.Context, scope string, data ports.LoginData) service.LoginResult
}

var _ SSOSessionInstaller = (*service.SessionService)(nil)

// SSOHandlers provides HTTP handlers for the single-sign-on flow, an
// alternative to password login for admin accounts.
type SSOHandlers struct {
	Provider     ports.SSOProvider
	Sessions     SSOSessionInstaller
	CookieDomain string
	Logger       *slog.Logger
}

func (h *SSOHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Begin starts the SSO flow and redirects to the identity provider.
// GET /auth/sso/login?redirect_uri=<optional_redirect>.
func (h *SSOHandlers) Begin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Provider.Begin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "sso begin failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "sso_begin_failed",
			Err:     errors.New("Échec de la connexion"),
		})
		return
	}

	h.setFlowCookies(w, r, flowCookieParams{State: state, Nonce: nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the SSO flow, installs the session, and redirects to
// the original destination.
// GET /auth/sso/callback?code=<code>&state=<state>.
func (h *SSOHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_callback",
			Err:     errors.New("code and state parameters are required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	data, err := h.Provider.Exchange(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "sso exchange failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "sso_exchange_failed",
			Err:     errors.New("Échec de la connexion"),
		})
		return
	}

	result := h.Sessions.CompleteSSO(r.Context(), ScopeFromContext(r.Context()), data)
	destination := h.postLoginRedirect(r)
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")
	h.clearCookie(w, r, "oauth_redirect")
	if !result.Success {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "sso_login_failed",
			Err:     errors.New(result.Error),
		})
		return
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

// postLoginRedirect returns the destination stored when the flow began.
func (h *SSOHandlers) postLoginRedirect(r *http.Request) string {
	if cookie, err := r.Cookie("oauth_redirect"); err == nil {
		if path := safeRedirectPath(cookie.Value); path != "" {
			return path
		}
	}
	return "/"
}

// safeRedirectPath allows only app-relative paths. Anything absolute,
// scheme-relative, or unparsable collapses to "/".
func safeRedirectPath(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return u.RequestURI()
}

// flowCookieParams groups values stored between Begin and Callback.
type flowCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

func (h *SSOHandlers) setFlowCookies(w http.ResponseWriter, r *http.Request, p flowCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	const flowTTL = 10 * time.Minute

	for name, value := range map[string]string{
		"oauth_state":    p.State,
		"oauth_nonce":    p.Nonce,
		"oauth_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			MaxAge:   int(flowTTL / time.Second),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// clearCookie expires a cookie with the same attributes it was set with.
func (h *SSOHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
