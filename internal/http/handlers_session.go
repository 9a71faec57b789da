package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/proxymarket/admin-api/internal/domain/auth"
)

// SessionHandlers provides HTTP handlers for the dashboard session
// endpoints: password login, logout, session snapshot, and profile patch.
type SessionHandlers struct {
	Sessions SessionManager
	Logger   *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles password login.
// POST /api/session/login.
func (h *SessionHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result := h.Sessions.Login(r.Context(), ScopeFromContext(r.Context()), req.Email, req.Password)
	if !result.Success {
		// Login failures are an expected answer, not a transport error;
		// the dashboard reads the message from the body.
		WriteJSON(w, http.StatusUnauthorized, result)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Logout handles logout. It always answers 204; upstream invalidation is
// best-effort and local state is cleared regardless.
// POST /api/session/logout.
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context(), ScopeFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Status returns the restored session snapshot for this browser scope.
// GET /api/session.
func (h *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	snapshot := h.Sessions.Restore(r.Context(), ScopeFromContext(r.Context()))
	if !snapshot.Authenticated {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          snapshot.User,
	})
}

// UpdateProfile merges a partial profile update into the stored identity.
// PATCH /api/session/profile. Requires authentication.
func (h *SessionHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch domainauth.ProfilePatch
	if !DecodeJSON(w, r, &patch) {
		return
	}

	identity := h.Sessions.UpdateUser(r.Context(), ScopeFromContext(r.Context()), patch)
	if identity == nil {
		// The session vanished between the guard and the merge.
		h.logger().DebugContext(r.Context(), "profile update without session",
			"scope", ScopeFromContext(r.Context()))
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errNoSession,
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": identity})
}
