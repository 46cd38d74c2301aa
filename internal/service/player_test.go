package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/healthyu/internal/catalog"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/session"
	"github.com/msomdec/healthyu/internal/stash"
	"go.uber.org/goleak"
)

// manualTicker fires only when the test sends on ch.
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

// testClock is a settable clock shared by the player and the test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type playerFixture struct {
	player  *service.PlayerService
	plans   *service.PlanService
	stash   *stash.Memory
	clock   *testClock
	tickers chan *manualTicker
	user    *domain.User
}

func newPlayerFixture(t *testing.T, items ...domain.PlanItem) *playerFixture {
	t.Helper()
	db := newTestDB(t)
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f := &playerFixture{
		plans:   service.NewPlanService(db.Plans(), cat),
		stash:   stash.NewMemory(time.Hour),
		clock:   &testClock{now: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)},
		tickers: make(chan *manualTicker, 4),
		user:    newTestUser(t, db, "player@example.com"),
	}
	f.player = service.NewPlayerService(f.plans, f.stash, time.Second,
		service.WithPlayerClock(f.clock.Now),
		service.WithIdleTimeout(time.Hour),
		service.WithTicker(func(time.Duration) service.Ticker {
			mt := &manualTicker{ch: make(chan time.Time)}
			f.tickers <- mt
			return mt
		}),
	)
	if len(items) > 0 {
		if _, err := f.plans.Create(context.Background(), f.user.ID, items); err != nil {
			t.Fatalf("create plan: %v", err)
		}
	}
	return f
}

func physical(name string, reps int) domain.PlanItem {
	return domain.PlanItem{Name: name, Category: domain.CategoryPhysical, Unit: domain.UnitFrequency, Value: reps}
}

func meditation(name string, minutes int) domain.PlanItem {
	return domain.PlanItem{Name: name, Category: domain.CategoryMeditation, Unit: domain.UnitMinutes, Value: minutes}
}

func waitClosed(t *testing.T, ch <-chan session.Snapshot) session.Snapshot {
	t.Helper()
	var last session.Snapshot
	timeout := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return last
			}
			last = snap
		case <-timeout:
			t.Fatal("watch channel was not closed")
		}
	}
}

func TestPlayer_StartWithoutPlan(t *testing.T) {
	f := newPlayerFixture(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	_, _, err := f.player.Start(context.Background(), f.user.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.player.Active() != 0 {
		t.Fatal("no session should be live")
	}
}

func TestPlayer_AdvanceToEnd(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	id, res, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Snapshot.Phase != domain.CategoryPhysical || res.Snapshot.Item == nil || res.Snapshot.Item.Name != "Push-ups" {
		t.Fatalf("unexpected start snapshot: %+v", res.Snapshot)
	}
	if got, ok := f.player.ActiveFor(f.user.ID); !ok || got != id {
		t.Fatalf("ActiveFor = %v %v, want %v", got, ok, id)
	}

	watch, cancel, err := f.player.Watch(id, f.user.ID)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer cancel()

	res, err = f.player.Do(ctx, id, f.user.ID, session.ActionAdvance)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Snapshot.Ended || !res.Has(session.NoticeSessionEnded) {
		t.Fatalf("expected the session to end, got %+v", res)
	}

	last := waitClosed(t, watch)
	if !last.Ended {
		t.Fatal("last watched snapshot should be the ended state")
	}

	report, err := f.stash.Get(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("stash Get: %v", err)
	}
	if report.Progress != 100 || report.Points != 100 {
		t.Fatalf("expected a full report, got %+v", report)
	}

	if _, err := f.player.Do(ctx, id, f.user.ID, session.ActionAdvance); !errors.Is(err, domain.ErrSessionNotRunning) {
		t.Fatalf("expected ErrSessionNotRunning after the end, got %v", err)
	}
	if _, ok := f.player.ActiveFor(f.user.ID); ok {
		t.Fatal("ended session must not stay registered")
	}
}

func TestPlayer_EndStashesPartialReport(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10), physical("Squats", 15))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	id, _, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.player.Do(ctx, id, f.user.ID, session.ActionAdvance); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	snap, err := f.player.Snapshot(id, f.user.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ItemIndex != 1 || snap.Progress != 50 {
		t.Fatalf("expected second item at 50%%, got index %d progress %v", snap.ItemIndex, snap.Progress)
	}

	res, err := f.player.Do(ctx, id, f.user.ID, session.ActionEnd)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !res.Snapshot.Ended {
		t.Fatal("expected ended snapshot")
	}
	f.player.Shutdown()

	report, err := f.stash.Get(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("stash Get: %v", err)
	}
	if report.Progress != 50 {
		t.Fatalf("expected 50%% progress, got %v", report.Progress)
	}
	if report.Physical[1].Status != domain.StatusPending {
		t.Fatalf("unvisited item should stay pending, got %s", report.Physical[1].Status)
	}
}

func TestPlayer_StartReplacesPreviousSession(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10), physical("Squats", 15))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	first, _, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	second, _, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if first == second {
		t.Fatal("expected a new session ID")
	}
	if f.player.Active() != 1 {
		t.Fatalf("expected one live session, got %d", f.player.Active())
	}
	if _, err := f.player.Snapshot(first, f.user.ID); !errors.Is(err, domain.ErrSessionNotRunning) {
		t.Fatalf("replaced session should be gone, got %v", err)
	}
	if report, err := f.stash.Get(ctx, f.user.ID); err != nil || report.Progress != 0 {
		t.Fatalf("replaced session should stash an empty report, got %+v, %v", report, err)
	}

	f.player.Shutdown()
	if f.player.Active() != 0 {
		t.Fatal("Shutdown must end every session")
	}
	if _, _, err := f.player.Start(ctx, f.user.ID); err == nil {
		t.Fatal("Start after Shutdown must fail")
	}
}

func TestPlayer_ConcurrentStartsKeepOneSession(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			ids []uuid.UUID
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, _, err := f.player.Start(ctx, f.user.ID)
				if err != nil {
					t.Errorf("Start: %v", err)
					return
				}
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
			}()
		}
		wg.Wait()

		if got := f.player.Active(); got != 1 {
			t.Fatalf("round %d: expected one live session, got %d", round, got)
		}
		active, ok := f.player.ActiveFor(f.user.ID)
		if !ok {
			t.Fatalf("round %d: user has no live session", round)
		}
		live := 0
		for _, id := range ids {
			if _, err := f.player.Snapshot(id, f.user.ID); err == nil {
				live++
				if id != active {
					t.Fatalf("round %d: session %s is live but not the user's active one", round, id)
				}
			}
		}
		if live != 1 {
			t.Fatalf("round %d: expected exactly one reachable session, got %d", round, live)
		}
	}
}

func TestPlayer_SessionsArePrivate(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	id, _, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	other := f.user.ID + 1

	if _, err := f.player.Do(ctx, id, other, session.ActionAdvance); !errors.Is(err, domain.ErrSessionNotRunning) {
		t.Fatalf("Do by another user: %v", err)
	}
	if _, _, err := f.player.Watch(id, other); !errors.Is(err, domain.ErrSessionNotRunning) {
		t.Fatalf("Watch by another user: %v", err)
	}
	if _, err := f.player.Snapshot(uuid.New(), f.user.ID); !errors.Is(err, domain.ErrSessionNotRunning) {
		t.Fatalf("Snapshot of unknown session: %v", err)
	}
}

func TestPlayer_RejectedActions(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	id, _, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := f.player.Do(ctx, id, f.user.ID, session.ActionTick); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a user tick, got %v", err)
	}

	// One item allows no skips.
	res, err := f.player.Do(ctx, id, f.user.ID, session.ActionSkip)
	if !errors.Is(err, session.ErrSkipLimit) {
		t.Fatalf("expected ErrSkipLimit, got %v", err)
	}
	if res.Snapshot.Ended || res.Snapshot.Statuses[domain.CategoryPhysical][0] != domain.StatusPending {
		t.Fatalf("rejected skip must leave the state unchanged: %+v", res.Snapshot)
	}

}

func TestPlayer_MeditationRunsOnTicks(t *testing.T) {
	f := newPlayerFixture(t, meditation("Calm", 1))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	id, res, err := f.player.Start(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Snapshot.Timer.State != session.TimerRunning {
		t.Fatalf("meditation should start running, got %s", res.Snapshot.Timer.State)
	}
	watch, cancel, err := f.player.Watch(id, f.user.ID)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer cancel()

	var ticker *manualTicker
	select {
	case ticker = <-f.tickers:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not create a ticker")
	}

	for i := 0; i < 60; i++ {
		select {
		case ticker.ch <- f.clock.Now():
		case <-time.After(5 * time.Second):
			t.Fatalf("tick %d was not consumed", i)
		}
	}

	last := waitClosed(t, watch)
	if !last.Ended || last.Timer.TotalSpent != 60 {
		t.Fatalf("expected a finished meditation, got %+v", last.Timer)
	}
	ticker.mu.Lock()
	stopped := ticker.stopped
	ticker.mu.Unlock()
	if !stopped {
		t.Fatal("ticker must be stopped when the session ends")
	}

	report, err := f.stash.Get(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("stash Get: %v", err)
	}
	if report.Meditation.Status != domain.MeditationCompleted || report.Progress != 100 {
		t.Fatalf("unexpected meditation report: %+v", report)
	}
}

func TestPlayer_ExpireIdle(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()
	ctx := context.Background()

	if _, _, err := f.player.Start(ctx, f.user.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n := f.player.ExpireIdle(); n != 0 {
		t.Fatalf("fresh session expired: %d", n)
	}

	f.clock.Advance(2 * time.Hour)
	if n := f.player.ExpireIdle(); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if f.player.Active() != 0 {
		t.Fatal("expired session must be removed")
	}
	if _, err := f.stash.Get(ctx, f.user.ID); err != nil {
		t.Fatalf("expired session should stash its report: %v", err)
	}
}

func TestPlayer_RunShutsDownOnCancel(t *testing.T) {
	f := newPlayerFixture(t, physical("Push-ups", 10))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer f.player.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.player.Run(ctx) }()

	if _, _, err := f.player.Start(context.Background(), f.user.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	if f.player.Active() != 0 {
		t.Fatal("Run must end live sessions on shutdown")
	}
}
