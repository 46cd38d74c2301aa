package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/view"
)

// HandleHome sends signed-in users to their profile and renders the
// landing page for everyone else.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if user := UserFromContext(r.Context()); user != nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	view.HomePage(view.Nav{}).Render(r.Context(), w)
}

// navFor builds the navbar for a signed-in user. A failing profile lookup
// only costs the counters.
func navFor(ctx context.Context, reports *service.ReportService, user *domain.User) view.Nav {
	nav := view.Nav{DisplayName: user.DisplayName}
	profile, err := reports.Profile(ctx, user.ID)
	if err != nil {
		slog.Error("get profile for navbar", "user_id", user.ID, "error", err)
		return nav
	}
	nav.Points, nav.Streak = profile.Points, profile.Streak
	return nav
}
