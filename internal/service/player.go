package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/metrics"
	"github.com/msomdec/healthyu/internal/session"
)

// Ticker delivers meditation ticks to a live session.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// PlayerOption configures a PlayerService.
type PlayerOption func(*PlayerService)

// WithTicker replaces the wall-clock ticker used for meditation countdowns.
func WithTicker(fn TickerFunc) PlayerOption {
	return func(s *PlayerService) { s.newTicker = fn }
}

// WithPlayerClock replaces time.Now for session start and end times.
func WithPlayerClock(now func() time.Time) PlayerOption {
	return func(s *PlayerService) { s.now = now }
}

// WithIdleTimeout sets how long a live session may go without user actions
// before Run ends it.
func WithIdleTimeout(d time.Duration) PlayerOption {
	return func(s *PlayerService) { s.idleTimeout = d }
}

// PlayerService runs guided sessions. Each live session is owned by one
// runner goroutine that holds the session.Controller; user actions and
// ticks reach it through channels and are applied one at a time.
type PlayerService struct {
	plans        *PlanService
	stash        domain.ReportStash
	tickInterval time.Duration
	idleTimeout  time.Duration
	newTicker    TickerFunc
	now          func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
	byUser   map[int64]uuid.UUID
	closed   bool
	wg       sync.WaitGroup
}

func NewPlayerService(plans *PlanService, stash domain.ReportStash, tickInterval time.Duration, opts ...PlayerOption) *PlayerService {
	s := &PlayerService{
		plans:        plans,
		stash:        stash,
		tickInterval: tickInterval,
		idleTimeout:  2 * time.Hour,
		newTicker:    newTimeTicker,
		now:          time.Now,
		sessions:     make(map[uuid.UUID]*liveSession),
		byUser:       make(map[int64]uuid.UUID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type request struct {
	action session.Action
	reply  chan response
}

type response struct {
	result session.Result
	err    error
}

type liveSession struct {
	id     uuid.UUID
	userID int64

	actions chan request
	stop    chan string
	done    chan struct{}

	mu           sync.Mutex
	last         session.Snapshot
	lastActivity time.Time
	watchers     map[chan session.Snapshot]struct{}
}

// broadcast records snap and hands it to every watcher, replacing any
// snapshot the watcher has not consumed yet.
func (ls *liveSession) broadcast(snap session.Snapshot) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.last = snap
	for ch := range ls.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (ls *liveSession) closeWatchers() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for ch := range ls.watchers {
		close(ch)
	}
	ls.watchers = nil
}

func (ls *liveSession) touch(now time.Time) {
	ls.mu.Lock()
	ls.lastActivity = now
	ls.mu.Unlock()
}

// Start begins a session over the user's plan. A live session the user
// already has is ended first. If the plan yields nothing to do the session
// ends at once; the returned ID is then uuid.Nil.
func (s *PlayerService) Start(ctx context.Context, userID int64) (uuid.UUID, session.Result, error) {
	plan, err := s.plans.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, session.Result{}, fmt.Errorf("%w: create a plan before starting a session", domain.ErrNotFound)
		}
		return uuid.Nil, session.Result{}, fmt.Errorf("get plan: %w", err)
	}

	ls := &liveSession{
		id:           uuid.New(),
		userID:       userID,
		actions:      make(chan request),
		stop:         make(chan string, 1),
		done:         make(chan struct{}),
		lastActivity: s.now(),
		watchers:     make(map[chan session.Snapshot]struct{}),
	}
	c, res := session.New(s.plans.SessionInput(plan),
		session.WithClock(s.now),
		session.WithReportSink(s.reportSink(userID)),
	)
	metrics.RecordSessionStarted()
	if c.Ended() {
		metrics.RecordSessionEnded("finished")
		return uuid.Nil, res, nil
	}
	ls.last = res.Snapshot
	c.Subscribe(ls.broadcast)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.End()
		metrics.RecordSessionEnded("shutdown")
		return uuid.Nil, session.Result{}, errors.New("player is shutting down")
	}
	prev, replacing := s.byUser[userID]
	s.sessions[ls.id] = ls
	s.byUser[userID] = ls.id
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ls, c)

	// The previous session is no longer reachable through byUser, so a
	// concurrent Start cannot pick it up again.
	if replacing {
		s.stopSession(prev, "replaced")
	}

	slog.Info("session started", "user_id", userID, "session_id", ls.id, "phases", len(res.Snapshot.Phases))
	return ls.id, res, nil
}

// reportSink stashes the final report so the report page can show it.
func (s *PlayerService) reportSink(userID int64) session.ReportSink {
	return func(r domain.SessionReport) {
		metrics.RecordReportProgress(r.Progress)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.stash.Put(ctx, userID, r); err != nil {
			slog.Error("stash session report", "user_id", userID, "error", err)
		}
	}
}

// run owns the controller until the session ends. The ticker only exists
// while the meditation countdown is running.
func (s *PlayerService) run(ls *liveSession, c *session.Controller) {
	defer s.wg.Done()

	var (
		ticker Ticker
		tickC  <-chan time.Time
		reason = "finished"
	)
	syncTicker := func() {
		switch running := c.TimerRunning(); {
		case running && ticker == nil:
			ticker = s.newTicker(s.tickInterval)
			tickC = ticker.C()
		case !running && ticker != nil:
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}

	syncTicker()
	for !c.Ended() {
		select {
		case req := <-ls.actions:
			res, err := c.Dispatch(req.action)
			metrics.RecordAction(string(req.action), err == nil)
			if req.action == session.ActionEnd {
				reason = "ended"
			}
			req.reply <- response{result: res, err: err}
		case <-tickC:
			c.Tick()
		case r := <-ls.stop:
			reason = r
			c.End()
		}
		syncTicker()
	}
	if ticker != nil {
		ticker.Stop()
	}

	s.mu.Lock()
	delete(s.sessions, ls.id)
	if s.byUser[ls.userID] == ls.id {
		delete(s.byUser, ls.userID)
	}
	s.mu.Unlock()

	close(ls.done)
	ls.closeWatchers()
	metrics.RecordSessionEnded(reason)
	slog.Info("session ended", "user_id", ls.userID, "session_id", ls.id, "reason", reason)
}

// lookup returns the live session if it exists and belongs to userID.
// Sessions of other users are reported as missing.
func (s *PlayerService) lookup(id uuid.UUID, userID int64) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[id]
	if !ok || ls.userID != userID {
		return nil, domain.ErrSessionNotRunning
	}
	return ls, nil
}

// Do applies a user action to a live session and returns its outcome.
// Session rejections (for example session.ErrSkipLimit) come back as errors
// next to the unchanged state.
func (s *PlayerService) Do(ctx context.Context, id uuid.UUID, userID int64, action session.Action) (session.Result, error) {
	if action == session.ActionTick {
		return session.Result{}, fmt.Errorf("%w: ticks are not user actions", domain.ErrInvalidInput)
	}
	ls, err := s.lookup(id, userID)
	if err != nil {
		return session.Result{}, err
	}
	ls.touch(s.now())

	req := request{action: action, reply: make(chan response, 1)}
	select {
	case ls.actions <- req:
	case <-ls.done:
		return session.Result{}, domain.ErrSessionNotRunning
	case <-ctx.Done():
		return session.Result{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.result, resp.err
	case <-ctx.Done():
		return session.Result{}, ctx.Err()
	}
}

// Snapshot returns the latest state of a live session.
func (s *PlayerService) Snapshot(id uuid.UUID, userID int64) (session.Snapshot, error) {
	ls, err := s.lookup(id, userID)
	if err != nil {
		return session.Snapshot{}, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.last, nil
}

// Watch streams snapshots of a live session, starting with the current one.
// Slow readers only ever see the latest snapshot. The channel is closed
// when the session ends or cancel is called.
func (s *PlayerService) Watch(id uuid.UUID, userID int64) (<-chan session.Snapshot, func(), error) {
	ls, err := s.lookup(id, userID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan session.Snapshot, 1)
	ls.mu.Lock()
	if ls.watchers == nil {
		ls.mu.Unlock()
		return nil, nil, domain.ErrSessionNotRunning
	}
	ch <- ls.last
	ls.watchers[ch] = struct{}{}
	ls.mu.Unlock()

	cancel := func() {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		if _, ok := ls.watchers[ch]; ok {
			delete(ls.watchers, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// ActiveFor returns the ID of the user's live session, if any.
func (s *PlayerService) ActiveFor(userID int64) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUser[userID]
	return id, ok
}

// Active returns the number of live sessions.
func (s *PlayerService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// stopSession ends a live session from outside and waits for its runner.
func (s *PlayerService) stopSession(id uuid.UUID, reason string) {
	s.mu.Lock()
	ls, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ls.stop <- reason:
	default:
	}
	<-ls.done
}

// expireIdle ends sessions without user actions for longer than the idle
// timeout and returns how many it ended.
func (s *PlayerService) expireIdle() int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	var stale []uuid.UUID
	for id, ls := range s.sessions {
		ls.mu.Lock()
		if ls.lastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
		ls.mu.Unlock()
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.stopSession(id, "expired")
	}
	return len(stale)
}

// Run expires idle sessions until ctx is done, then ends every live session
// and waits for the runners to exit.
func (s *PlayerService) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return nil
		case <-ticker.C:
			if n := s.expireIdle(); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// Shutdown ends every live session, so their reports are stashed, and
// waits for all runners. Start fails afterwards.
func (s *PlayerService) Shutdown() {
	s.mu.Lock()
	s.closed = true
	ids := make([]uuid.UUID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.stopSession(id, "shutdown")
	}
	s.wg.Wait()
}
