package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

var (
	ErrEnded         = errors.New("session has ended")
	ErrWrongPhase    = errors.New("action not available in this phase")
	ErrSkipLimit     = errors.New("skip limit reached")
	ErrItemSettled   = errors.New("item already settled")
	ErrNoSuchItem    = errors.New("no such item")
	ErrInvalidStatus = errors.New("invalid status")
)

// Action names a user or scheduler action dispatched to a Controller.
type Action string

const (
	ActionAdvance  Action = "advance"
	ActionSkip     Action = "skip"
	ActionPrevious Action = "previous"
	ActionEnd      Action = "end"
	ActionTick     Action = "tick"
)

// ParseAction validates a user-facing action name. Ticks are not accepted
// from users.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionAdvance, ActionSkip, ActionPrevious, ActionEnd:
		return a, true
	}
	return "", false
}

// NoticeKind classifies a diagnostic returned alongside a state change.
type NoticeKind string

const (
	NoticePhaseCompleted        NoticeKind = "phase_completed"
	NoticeConfirmEnd            NoticeKind = "confirm_end"
	NoticeMeditationAutoSkipped NoticeKind = "meditation_auto_skipped"
	NoticeSessionEnded          NoticeKind = "session_ended"
)

// Notice is a user-facing message produced by an action.
type Notice struct {
	Kind    NoticeKind
	Phase   domain.Category
	Message string
}

// Result is the outcome of an action: the state after it and any notices.
type Result struct {
	Snapshot Snapshot
	Notices  []Notice
}

// Has reports whether the result carries a notice of the given kind.
func (r Result) Has(kind NoticeKind) bool {
	for _, n := range r.Notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// ReportSink receives the final report once, when the session ends.
type ReportSink func(domain.SessionReport)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now. The clock is read once at start and once at end.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithReportSink sets the collaborator that receives the final report.
func WithReportSink(sink ReportSink) Option {
	return func(c *Controller) { c.sink = sink }
}

// Controller drives a session through its phases. It exclusively owns the
// session state; it is not safe for concurrent use.
type Controller struct {
	in       Input
	order    []domain.Category
	weight   float64
	tracker  *StatusTracker
	governor *SkipGovernor
	timer    *MeditationTimer

	phaseIndex int
	cursor     int // item cursor in the current physical or yoga phase
	medIndex   int // current meditation item

	startedAt time.Time
	endedAt   time.Time
	ended     bool
	report    *domain.SessionReport

	now         func() time.Time
	sink        ReportSink
	subscribers []func(Snapshot)
}

// New starts a session over in. The returned Result holds the initial state;
// a plan without items ends immediately with zero progress.
func New(in Input, opts ...Option) (*Controller, Result) {
	tracker := NewStatusTracker(in)
	c := &Controller{
		in:       in,
		order:    PhaseOrder(in),
		tracker:  tracker,
		governor: NewSkipGovernor(tracker),
		timer:    NewMeditationTimer(tracker, in.Meditation),
		now:      time.Now,
	}
	c.weight = categoryWeight(len(c.order))
	for _, opt := range opts {
		opt(c)
	}
	c.startedAt = c.now()

	var notices []Notice
	c.enterPhase(0, &notices)
	return c, Result{Snapshot: c.Snapshot(), Notices: notices}
}

// Subscribe registers fn to receive a snapshot after every state change.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.subscribers = append(c.subscribers, fn)
}

// Advance completes the current physical or yoga item and moves on.
// Advancing over an item that is already settled moves the cursor without
// touching its status.
func (c *Controller) Advance() (Result, error) {
	if c.ended {
		return c.unchanged(), ErrEnded
	}
	phase := c.Phase()
	if phase == domain.CategoryMeditation {
		return c.unchanged(), fmt.Errorf("%w: meditation advances on its own", ErrWrongPhase)
	}

	if c.tracker.Status(phase, c.cursor) == domain.StatusPending {
		if err := c.tracker.Mark(phase, c.cursor, domain.StatusCompleted); err != nil {
			return c.unchanged(), err
		}
	}

	var notices []Notice
	c.moveCursor(&notices)
	return c.publish(notices), nil
}

// Skip skips the current item. Outside meditation the skip quota applies;
// a rejected skip leaves the state untouched. Inside meditation the running
// countdown is interrupted and the next meditation item starts.
func (c *Controller) Skip() (Result, error) {
	if c.ended {
		return c.unchanged(), ErrEnded
	}
	var notices []Notice

	phase := c.Phase()
	if phase == domain.CategoryMeditation {
		c.timer.Interrupt()
		c.nextMeditation(&notices)
		return c.publish(notices), nil
	}

	if c.tracker.Status(phase, c.cursor).Terminal() {
		return c.unchanged(), fmt.Errorf("%w: this exercise is already %s", ErrItemSettled, c.tracker.Status(phase, c.cursor))
	}
	if !c.governor.CanSkip() {
		return c.unchanged(), fmt.Errorf("%w: you can skip at most %d exercises (Physical + Yoga combined)", ErrSkipLimit, c.governor.Max())
	}
	if err := c.tracker.Mark(phase, c.cursor, domain.StatusSkipped); err != nil {
		return c.unchanged(), err
	}

	c.moveCursor(&notices)
	return c.publish(notices), nil
}

// Previous moves back one item within the current phase. On the first item
// it changes nothing and offers to end the session instead; phases are
// never revisited.
func (c *Controller) Previous() (Result, error) {
	if c.ended {
		return c.unchanged(), ErrEnded
	}
	if c.Phase() == domain.CategoryMeditation {
		return c.unchanged(), fmt.Errorf("%w: cannot go back during meditation", ErrWrongPhase)
	}
	if c.cursor == 0 {
		res := c.unchanged()
		res.Notices = []Notice{{
			Kind:    NoticeConfirmEnd,
			Phase:   c.Phase(),
			Message: "You are on the first exercise. Do you want to end the session?",
		}}
		return res, nil
	}
	c.cursor--
	return c.publish(nil), nil
}

// End stops the session from any state. A running meditation countdown is
// interrupted first so its partial time is kept. Ending twice is a no-op.
func (c *Controller) End() (Result, error) {
	if c.ended {
		return c.unchanged(), nil
	}
	var notices []Notice
	c.finish(&notices)
	return c.publish(notices), nil
}

// Tick advances the meditation countdown by one second. It is a no-op when
// no countdown is running.
func (c *Controller) Tick() (Result, error) {
	if c.ended || c.timer.State() != TimerRunning {
		return c.unchanged(), nil
	}
	var notices []Notice
	if c.timer.Tick() {
		c.nextMeditation(&notices)
	}
	return c.publish(notices), nil
}

// Dispatch runs the named action.
func (c *Controller) Dispatch(a Action) (Result, error) {
	switch a {
	case ActionAdvance:
		return c.Advance()
	case ActionSkip:
		return c.Skip()
	case ActionPrevious:
		return c.Previous()
	case ActionEnd:
		return c.End()
	case ActionTick:
		return c.Tick()
	}
	return c.unchanged(), fmt.Errorf("unknown action %q", a)
}

// Phase returns the current phase, or "" once the session has ended.
func (c *Controller) Phase() domain.Category {
	if c.ended || c.phaseIndex >= len(c.order) {
		return ""
	}
	return c.order[c.phaseIndex]
}

// Ended reports whether the session has reached its terminal state.
func (c *Controller) Ended() bool { return c.ended }

// TimerRunning reports whether the meditation countdown needs ticks.
func (c *Controller) TimerRunning() bool {
	return !c.ended && c.timer.State() == TimerRunning
}

// Report returns the final report once the session has ended.
func (c *Controller) Report() (domain.SessionReport, bool) {
	if c.report == nil {
		return domain.SessionReport{}, false
	}
	return cloneReport(*c.report), true
}

// Progress returns the live weighted progress percentage.
func (c *Controller) Progress() float64 {
	return ComputeRatios(c.order, c.tracker, c.timer).Progress(c.weight)
}

// moveCursor steps past the current physical or yoga item and completes the
// phase when the list is exhausted.
func (c *Controller) moveCursor(notices *[]Notice) {
	c.cursor++
	if c.cursor >= len(c.in.Items(c.Phase())) {
		c.completePhase(notices)
	}
}

// enterPhase enters the first phase at or after idx that has items. Empty
// phases are passed over without notices or status changes.
func (c *Controller) enterPhase(idx int, notices *[]Notice) {
	for ; idx < len(c.order); idx++ {
		phase := c.order[idx]
		if len(c.in.Items(phase)) == 0 {
			continue
		}
		c.phaseIndex = idx
		c.cursor = 0
		if phase != domain.CategoryMeditation {
			return
		}
		c.medIndex = 0
		if c.startMeditation(notices) {
			return
		}
		// Every meditation item was unusable; the phase is over.
		*notices = append(*notices, c.phaseCompletedNotice(phase))
	}
	c.finish(notices)
}

// startMeditation starts the countdown for the first usable meditation item
// at or after medIndex. It returns false when none is left.
func (c *Controller) startMeditation(notices *[]Notice) bool {
	items := c.in.Meditation
	for ; c.medIndex < len(items); c.medIndex++ {
		it := items[c.medIndex]
		if c.timer.Start(c.medIndex, plannedMinutes(it)) {
			return true
		}
		*notices = append(*notices, Notice{
			Kind:    NoticeMeditationAutoSkipped,
			Phase:   domain.CategoryMeditation,
			Message: fmt.Sprintf("Meditation minutes not set for %q; it was skipped.", it.Name),
		})
	}
	return false
}

// nextMeditation moves past the current meditation item.
func (c *Controller) nextMeditation(notices *[]Notice) {
	c.medIndex++
	if c.startMeditation(notices) {
		return
	}
	c.completePhase(notices)
}

func (c *Controller) completePhase(notices *[]Notice) {
	*notices = append(*notices, c.phaseCompletedNotice(c.Phase()))
	c.enterPhase(c.phaseIndex+1, notices)
}

func (c *Controller) phaseCompletedNotice(phase domain.Category) Notice {
	return Notice{
		Kind:    NoticePhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("%s phase completed. Current progress: %.0f%%", phase.Label(), c.Progress()),
	}
}

// finish cancels the countdown, freezes the state and builds the report.
func (c *Controller) finish(notices *[]Notice) {
	c.timer.Interrupt()
	c.ended = true
	c.endedAt = c.now()

	report := BuildReport(c.in, c.order, c.tracker, c.timer, c.startedAt, c.endedAt)
	c.report = &report
	if c.sink != nil {
		c.sink(cloneReport(report))
	}
	*notices = append(*notices, Notice{
		Kind:    NoticeSessionEnded,
		Message: fmt.Sprintf("Session ended. Final progress: %.1f%%", report.Progress),
	})
}

func (c *Controller) unchanged() Result {
	return Result{Snapshot: c.Snapshot()}
}

func (c *Controller) publish(notices []Notice) Result {
	snap := c.Snapshot()
	for _, fn := range c.subscribers {
		fn(snap)
	}
	return Result{Snapshot: snap, Notices: notices}
}
