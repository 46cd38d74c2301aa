package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/view"
)

// ReportHandler shows the last session report and saves it.
type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HandlePage renders the pending report, or a zeroed view without one.
// GET /session/report
func (h *ReportHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.reports.Pending(r.Context(), user.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Error("get pending report", "user_id", user.ID, "error", err)
	}
	if err != nil {
		report = nil
	}
	view.ReportPage(navFor(r.Context(), h.reports, user), report).Render(r.Context(), w)
}

// HandleDiscard drops the pending report without saving it.
// POST /session/report/discard
func (h *ReportHandler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.reports.Discard(r.Context(), user.ID); err != nil {
		slog.Error("discard report", "user_id", user.ID, "error", err)
		http.Error(w, "Could not discard the session report.", http.StatusInternalServerError)
		return
	}
	slog.Info("session report discarded", "user_id", user.ID)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleSubmit saves the pending report. The request carries the client's
// copy; the server saves its own stashed report.
// POST /api/sessions/submit
// Request:  {"report": {...}}
// Response: {"message":"...","streak":1,"points":80,"earned":80}
func (h *ReportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req submitRequest
	if err := readJSON(w, r, &req); err != nil || req.Report == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	pending, err := h.reports.Pending(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No session report to save.")
			return
		}
		slog.Error("get pending report", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	res, err := h.reports.Submit(r.Context(), user.ID, *pending)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProgressTooLow):
			writeError(w, http.StatusUnprocessableEntity, "Progress must be at least 50% to save a session.")
		case errors.Is(err, domain.ErrAlreadySubmitted):
			writeError(w, http.StatusConflict, "You already saved a session today.")
		default:
			slog.Error("submit report", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}
