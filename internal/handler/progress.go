package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/view"
)

// ProgressHandler serves the progress charts.
type ProgressHandler struct {
	progress *service.ProgressService
	reports  *service.ReportService
}

func NewProgressHandler(progress *service.ProgressService, reports *service.ReportService) *ProgressHandler {
	return &ProgressHandler{progress: progress, reports: reports}
}

// HandlePage renders the charts.
// GET /progress
func (h *ProgressHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	charts, err := h.progress.Charts(r.Context(), user.ID)
	if err != nil {
		slog.Error("build progress charts", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.ProgressPage(navFor(r.Context(), h.reports, user), charts).Render(r.Context(), w)
}

// HandleAPI returns the chart data as JSON.
// GET /api/progress
func (h *ProgressHandler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	charts, err := h.progress.Charts(r.Context(), user.ID)
	if err != nil {
		slog.Error("build progress charts", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, charts)
}
