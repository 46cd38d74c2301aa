package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/session"
	"github.com/msomdec/healthyu/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

const reportPath = "/session/report"

// PlayerHandler serves the guided session player.
type PlayerHandler struct {
	player  *service.PlayerService
	reports *service.ReportService
}

func NewPlayerHandler(player *service.PlayerService, reports *service.ReportService) *PlayerHandler {
	return &PlayerHandler{player: player, reports: reports}
}

// HandleStart starts a session over the user's plan.
// POST /session/start
func (h *PlayerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, _, err := h.player.Start(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Redirect(w, r, "/plan/new", http.StatusSeeOther)
			return
		}
		slog.Error("start session", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if id == uuid.Nil {
		http.Redirect(w, r, reportPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/session/"+id.String(), http.StatusSeeOther)
}

// HandleView renders the player page of a live session.
// GET /session/{id}
func (h *PlayerHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	snap, err := h.player.Snapshot(id, user.ID)
	if err != nil {
		// Ended, replaced or someone else's.
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	nav := navFor(r.Context(), h.reports, user)
	nav.GuardSessionID = id.String()
	view.PlayerPage(nav, id.String(), session.Result{Snapshot: snap}).Render(r.Context(), w)
}

// HandleAction applies advance, skip, previous or end and patches the
// player. When the session ends the browser is redirected to the report,
// or to the local path in the next query parameter.
// POST /session/{id}/{action}
func (h *PlayerHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	action, ok := session.ParseAction(r.PathValue("action"))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	res, err := h.player.Do(r.Context(), id, user.ID, action)
	switch {
	case errors.Is(err, domain.ErrSessionNotRunning):
		sse := datastar.NewSSE(w, r)
		sse.Redirect(localPath(r.URL.Query().Get("next"), "/profile"))
		return
	case isRejection(err):
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(view.PlayerError(rejectionMessage(err)), datastar.WithSelectorID(view.PlayerNoticesID))
		sse.PatchElementTempl(view.PlayerState(id.String(), res.Snapshot), datastar.WithSelectorID(view.PlayerStateID))
		return
	case err != nil:
		slog.Error("session action", "user_id", user.ID, "session_id", id, "action", action, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if res.Snapshot.Ended {
		sse.Redirect(localPath(r.URL.Query().Get("next"), reportPath))
		return
	}
	sse.PatchElementTempl(view.PlayerNotices(id.String(), res.Notices), datastar.WithSelectorID(view.PlayerNoticesID))
	sse.PatchElementTempl(view.PlayerState(id.String(), res.Snapshot), datastar.WithSelectorID(view.PlayerStateID))
}

// HandleStream keeps the player state current, including meditation
// countdown ticks, until the session ends or the client goes away.
// GET /session/{id}/stream
func (h *PlayerHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	snapshots, cancel, err := h.player.Watch(id, user.ID)
	if err != nil {
		sse := datastar.NewSSE(w, r)
		sse.Redirect("/profile")
		return
	}
	defer cancel()

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok || snap.Ended {
				sse.Redirect(reportPath)
				return
			}
			if err := sse.PatchElementTempl(view.PlayerState(id.String(), snap), datastar.WithSelectorID(view.PlayerStateID)); err != nil {
				return
			}
		}
	}
}

func isRejection(err error) bool {
	return errors.Is(err, session.ErrSkipLimit) ||
		errors.Is(err, session.ErrItemSettled) ||
		errors.Is(err, session.ErrWrongPhase) ||
		errors.Is(err, session.ErrEnded)
}

func rejectionMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// localPath returns p when it is a path on this site, fallback otherwise.
func localPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}
