package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/view"
)

// PlanHandler handles the plan pages and the plan API.
type PlanHandler struct {
	plans   *service.PlanService
	reports *service.ReportService
}

func NewPlanHandler(plans *service.PlanService, reports *service.ReportService) *PlanHandler {
	return &PlanHandler{plans: plans, reports: reports}
}

// HandlePlan shows the user's plan.
// GET /plan
func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plan, err := h.plans.GetByUser(r.Context(), user.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Error("get plan", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.PlanPage(navFor(r.Context(), h.reports, user), plan).Render(r.Context(), w)
}

// HandleNew renders the plan builder. Users who already have a plan are
// sent back to it.
// GET /plan/new
func (h *PlanHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.plans.GetByUser(r.Context(), user.ID); err == nil {
		http.Redirect(w, r, "/plan", http.StatusSeeOther)
		return
	}
	view.PlanBuilderPage(navFor(r.Context(), h.reports, user), h.plans.Catalog()).Render(r.Context(), w)
}

// HandleCreate stores a new plan.
// POST /api/plan
// Request:  {"items":[{"name":"...","category":"physical","value":10,"unit":"freq"}]}
// Response: 201 {"plan": {...}}
func (h *PlanHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req createPlanRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	plan, err := h.plans.Create(r.Context(), user.ID, fromPlanItemDTOs(req.Items))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlanExists):
			writeError(w, http.StatusConflict, "Plan already exists. You can only delete it.")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, userMessage(err))
		default:
			slog.Error("create plan", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"plan": toPlanDTO(plan)})
}

// HandleGet returns the user's plan as JSON.
// GET /api/plan
func (h *PlanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	plan, err := h.plans.GetByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No plan yet.")
			return
		}
		slog.Error("get plan", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": toPlanDTO(plan)})
}

// HandleDelete removes the user's plan.
// POST /plan/delete
func (h *PlanHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.plans.Delete(r.Context(), user.ID); err != nil {
		slog.Error("delete plan", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/plan", http.StatusSeeOther)
}
