package httpx

import (
	"context"
	"net/http"

	"github.com/proxymarket/admin-api/internal/service"
)

// ReportProvider aggregates the dashboard overview numbers.
// *service.ReportService satisfies it.
type ReportProvider interface {
	Overview(ctx context.Context, token string) (service.Report, error)
}

var _ ReportProvider = (*service.ReportService)(nil)

// ReportHandlers serves the aggregated dashboard statistics.
type ReportHandlers struct {
	Reports  ReportProvider
	Sessions SessionManager
}

// Overview returns all report sections in one response.
// GET /api/reports/overview.
func (h *ReportHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	token, ok := h.Sessions.Token(r.Context(), ScopeFromContext(r.Context()))
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errNoSession,
		})
		return
	}

	report, err := h.Reports.Overview(r.Context(), token)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report.Sections)
}
