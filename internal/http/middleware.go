package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/proxymarket/admin-api/internal/domain/auth"
	"github.com/proxymarket/admin-api/internal/service"
)

// ScopeCookieName is the cookie carrying the per-browser session scope.
const ScopeCookieName = "pm_session"

// scopeCookieMaxAge keeps the scope stable across visits; session entries
// themselves expire with the token, not with the cookie.
const scopeCookieMaxAge = int(365 * 24 * time.Hour / time.Second)

// SessionManager is the narrow view of the session service the HTTP layer
// needs. *service.SessionService satisfies it.
type SessionManager interface {
	Restore(ctx context.Context, scope string) service.Snapshot
	Login(ctx context.Context, scope, email, password string) service.LoginResult
	Logout(ctx context.Context, scope string)
	UpdateUser(ctx context.Context, scope string, patch domainauth.ProfilePatch) *domainauth.Identity
	Token(ctx context.Context, scope string) (string, bool)
}

var _ SessionManager = (*service.SessionService)(nil)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Scope returns a middleware that attaches a per-browser scope identifier
// to every request. A missing or malformed cookie gets replaced with a
// fresh one, which starts that browser as a guest.
func Scope() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := scopeFromRequest(r)
			if scope == "" {
				scope = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ScopeCookieName,
					Value:    scope,
					Path:     "/",
					MaxAge:   scopeCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := SetScopeInContext(r.Context(), scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// scopeFromRequest returns the validated scope cookie value, or "".
func scopeFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(ScopeCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth returns a middleware that restores the session for the
// request's scope and rejects unauthenticated requests with a 401.
func RequireAuth(sessions SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snapshot := sessions.Restore(r.Context(), ScopeFromContext(r.Context()))
			if !snapshot.Authenticated {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errNoSession,
				})
				return
			}

			ctx := SetIdentityInContext(r.Context(), snapshot.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns a middleware that requires the restored identity's
// role slug to be in the allow-list. It implies RequireAuth.
func RequireRole(sessions SessionManager, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snapshot := sessions.Restore(r.Context(), ScopeFromContext(r.Context()))
			if !snapshot.Authenticated {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errNoSession,
				})
				return
			}

			if _, ok := allowed[snapshot.User.Role]; !ok {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errForbidden,
				})
				return
			}

			ctx := SetIdentityInContext(r.Context(), snapshot.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
