package view

import (
	"bytes"
	"context"
	"html"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/msomdec/healthyu/internal/catalog"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/session"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestNavbar_GuardsLinksDuringSession(t *testing.T) {
	out := render(t, navbar(Nav{DisplayName: "Ana", GuardSessionID: "abc"}))
	if !strings.Contains(html.UnescapeString(out), "@post('/session/abc/end?next=/profile')") {
		t.Fatalf("expected guarded profile link, got %s", out)
	}
	if strings.Contains(out, `action="/logout"`) {
		t.Fatal("logout must be hidden while a session runs")
	}

	out = render(t, navbar(Nav{DisplayName: "Ana"}))
	if strings.Contains(out, "data-on-click") {
		t.Fatal("links outside a session must not be guarded")
	}
}

func TestLoginPage_EscapesInput(t *testing.T) {
	out := render(t, LoginPage("bad <login>", `"><script>`))
	if strings.Contains(out, "<script>") || strings.Contains(out, "<login>") {
		t.Fatalf("user input was not escaped: %s", out)
	}
}

func TestPlayerState(t *testing.T) {
	snap := session.Snapshot{
		Phases:     []domain.Category{domain.CategoryPhysical, domain.CategoryMeditation},
		Phase:      domain.CategoryMeditation,
		PhaseIndex: 1,
		ItemCount:  2,
		Item:       &domain.ExerciseItem{Name: "Calm", Unit: domain.UnitMinutes, Value: 3, Steps: []string{"Breathe"}},
		Progress:   62.5,
		Timer:      session.TimerSnapshot{State: session.TimerRunning, RemainingSeconds: 95, SpentSeconds: 85, TotalSpent: 60, TotalPlanned: 240},
		Statuses: map[domain.Category][]domain.ItemStatus{
			domain.CategoryMeditation: {domain.StatusCompleted, domain.StatusPending},
		},
	}
	out := render(t, PlayerState("abc", snap))
	for _, want := range []string{"Phase 2 of 2: Meditation", "01:35", "02:25 of 04:00", "62.5%", "/session/abc/skip"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
	if strings.Contains(out, "/session/abc/previous") {
		t.Fatal("meditation has no previous button")
	}

	ended := render(t, PlayerState("abc", session.Snapshot{Ended: true, Progress: 100}))
	if !strings.Contains(ended, "/session/report") {
		t.Fatalf("ended state should link to the report: %s", ended)
	}
}

func TestReportPage(t *testing.T) {
	nav := Nav{DisplayName: "Ana"}

	empty := render(t, ReportPage(nav, nil))
	if !strings.Contains(empty, "No session report") || !strings.Contains(empty, "<button disabled>") {
		t.Fatalf("expected zeroed view with saving disabled: %s", empty)
	}

	low := render(t, ReportPage(nav, &domain.SessionReport{Progress: 49.9}))
	if !strings.Contains(low, "<button disabled>") {
		t.Fatal("saving must be disabled under 50%")
	}

	ok := render(t, ReportPage(nav, &domain.SessionReport{
		Progress: 80,
		Points:   80,
		Physical: []domain.ReportItem{{Name: "</script>", Value: 1, Unit: domain.UnitFrequency, Status: domain.StatusCompleted}},
	}))
	if !strings.Contains(ok, `id="save-report"`) || strings.Count(ok, "</script>") != strings.Count(ok, "<script") {
		t.Fatalf("unexpected report page: %s", ok)
	}
	if !strings.Contains(ok, `action="/session/report/discard"`) {
		t.Fatal("a pending report can be discarded")
	}
	if strings.Contains(empty, "/session/report/discard") {
		t.Fatal("nothing to discard without a report")
	}
}

func TestComponents_Render(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	nav := Nav{DisplayName: "Ana", Points: 120, Streak: 3}
	last := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	plan := &domain.Plan{ID: 1, UserID: 1, Items: []domain.PlanItem{
		{Category: domain.CategoryPhysical, Name: "Squats", Value: 10, Unit: domain.UnitFrequency},
		{Category: domain.CategoryMeditation, Name: "Calm", Value: 5, Unit: domain.UnitMinutes},
	}}
	snap := session.Snapshot{
		Phases:    []domain.Category{domain.CategoryPhysical},
		Phase:     domain.CategoryPhysical,
		Item:      &domain.ExerciseItem{Name: "Squats", Unit: domain.UnitFrequency, Value: 10},
		ItemCount: 1,
		Statuses:  map[domain.Category][]domain.ItemStatus{domain.CategoryPhysical: {domain.StatusPending}},
	}
	charts := &service.ProgressCharts{
		Daily: service.Series{Labels: []string{"Mar 4"}, Progress: []float64{75}, Points: []float64{75}},
	}

	tests := []struct {
		name string
		c    templ.Component
		want string
	}{
		{"home", HomePage(nav), "HealthyU"},
		{"login", LoginPage("", "ana@example.com"), "ana@example.com"},
		{"register", RegisterPage("taken", RegisterForm{Email: "ana@example.com", DisplayName: "Ana"}), "taken"},
		{"profile", ProfilePage(nav, ProfileData{
			Profile: &domain.Profile{Points: 120, Streak: 3, LastActivity: &last},
			Plan:    plan,
			Recent:  []domain.SubmittedSession{{SubmittedAt: last, Report: domain.SessionReport{Progress: 75, Points: 75}}},
		}), "Mar 4, 2026"},
		{"plan", PlanPage(nav, plan), "Squats"},
		{"plan without items", PlanPage(nav, nil), "<h1"},
		{"plan builder", PlanBuilderPage(nav, cat), "<form"},
		{"player", PlayerPage(nav, "abc", session.Result{Snapshot: snap}), "/session/abc/stream"},
		{"notices", PlayerNotices("abc", []session.Notice{{Kind: session.NoticeMeditationAutoSkipped, Message: "skipped"}}), "skipped"},
		{"player error", PlayerError("boom"), "boom"},
		{"player state", PlayerState("abc", snap), "Squats"},
		{"progress", ProgressPage(nav, charts), "Mar 4"},
		{"report", ReportPage(nav, &domain.SessionReport{Progress: 75}), "75.0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.c)
			if !strings.Contains(out, tt.want) {
				t.Fatalf("expected %q in %s", tt.want, out)
			}
		})
	}
}
