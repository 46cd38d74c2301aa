package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/view"
)

const recentSessions = 5

// ProfileHandler renders the profile page.
type ProfileHandler struct {
	plans   *service.PlanService
	player  *service.PlayerService
	reports *service.ReportService
}

func NewProfileHandler(plans *service.PlanService, player *service.PlayerService, reports *service.ReportService) *ProfileHandler {
	return &ProfileHandler{plans: plans, player: player, reports: reports}
}

// HandleProfile shows points, streak, the plan summary and recent sessions.
// GET /profile
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ctx := r.Context()

	profile, err := h.reports.Profile(ctx, user.ID)
	if err != nil {
		slog.Error("get profile", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	plan, err := h.plans.GetByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Error("get plan for profile", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	recent, err := h.reports.Recent(ctx, user.ID, recentSessions)
	if err != nil {
		slog.Error("list recent sessions", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := view.ProfileData{Profile: profile, Plan: plan, Recent: recent}
	if id, ok := h.player.ActiveFor(user.ID); ok {
		data.ActiveSession = id.String()
	}
	if _, err := h.reports.Pending(ctx, user.ID); err == nil {
		data.HasReport = true
	}

	nav := view.Nav{DisplayName: user.DisplayName, Points: profile.Points, Streak: profile.Streak}
	view.ProfilePage(nav, data).Render(ctx, w)
}
