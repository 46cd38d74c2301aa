// Package view renders the HTML pages and the fragments patched into them
// over datastar SSE.
package view

//go:generate templ generate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/session"
)

// Element IDs patched by the player handlers.
const (
	PlayerStateID   = "player-state"
	PlayerNoticesID = "player-notices"
)

// MinSaveProgress mirrors the server-side save threshold for the button state.
const MinSaveProgress = 50

// Nav describes the navbar. With GuardSessionID set, leaving through a
// navbar link asks for confirmation and ends that session first.
type Nav struct {
	DisplayName    string
	Points         int
	Streak         int
	GuardSessionID string
}

// RegisterForm holds the values echoed back after a failed registration.
type RegisterForm struct {
	Email       string
	DisplayName string
}

// ProfileData is everything shown on the profile page.
type ProfileData struct {
	Profile       *domain.Profile
	Plan          *domain.Plan
	ActiveSession string
	HasReport     bool
	Recent        []domain.SubmittedSession
}

// saveRequest is the body the report page posts to /api/sessions/submit.
type saveRequest struct {
	Report domain.SessionReport `json:"report"`
}

// leaveSession is the datastar expression of a guarded navbar link.
func leaveSession(sessionID, href string) string {
	return fmt.Sprintf("confirm('Leaving this page ends your session. Continue?') && @post('/session/%s/end?next=%s')", sessionID, href)
}

func sessionAction(sessionID, action string) string {
	return fmt.Sprintf("@post('/session/%s/%s')", sessionID, action)
}

func sessionStream(sessionID string) string {
	return fmt.Sprintf("@get('/session/%s/stream')", sessionID)
}

func noticeKind(n session.Notice) string {
	if n.Kind == session.NoticeMeditationAutoSkipped {
		return "warning"
	}
	return "info"
}

// reportOrZero returns r, or an empty report for the page without one.
func reportOrZero(r *domain.SessionReport) domain.SessionReport {
	if r == nil {
		return domain.SessionReport{Meditation: domain.MeditationSummary{Status: domain.MeditationNotPlanned}}
	}
	return *r
}

func unitLabel(u domain.Unit) string {
	if u == domain.UnitMinutes {
		return "min"
	}
	return "reps"
}

func valueLabel(v int, u domain.Unit) string {
	return strconv.Itoa(v) + " " + unitLabel(u)
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func percent(v float64) string {
	return decimal(v) + "%"
}

func day(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
