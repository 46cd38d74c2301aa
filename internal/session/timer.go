package session

import "github.com/msomdec/healthyu/internal/domain"

// TimerState is the state of the meditation countdown.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerStopped
)

func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerStopped:
		return "stopped"
	}
	return "unknown"
}

// MeditationTimer counts down one meditation item at a time and accumulates
// the seconds actually spent across items. It marks meditation items
// completed when their time elapses and skipped when they are interrupted.
type MeditationTimer struct {
	tracker *StatusTracker

	state        TimerState
	index        int
	planned      int // seconds planned for the current item
	spent        int // seconds spent on the current item
	total        int // seconds folded in from finished or interrupted items
	totalPlanned int // seconds planned over all meditation items
}

// NewMeditationTimer creates an idle timer for the given meditation items.
func NewMeditationTimer(tracker *StatusTracker, items []domain.ExerciseItem) *MeditationTimer {
	t := &MeditationTimer{tracker: tracker}
	for _, it := range items {
		t.totalPlanned += plannedMinutes(it) * 60
	}
	return t
}

// plannedMinutes returns the item's planned duration, or 0 if it has none.
func plannedMinutes(it domain.ExerciseItem) int {
	if it.Value > 0 {
		return it.Value
	}
	return 0
}

// Start begins the countdown for meditation item index. Starting while a
// countdown is already running does nothing and returns true. An item
// without a positive duration is marked skipped and Start returns false.
func (t *MeditationTimer) Start(index, minutes int) bool {
	if t.state == TimerRunning {
		return true
	}
	if minutes <= 0 {
		// Data-quality guard; never counted against the user.
		_ = t.tracker.set(domain.CategoryMeditation, index, domain.StatusSkipped)
		return false
	}
	t.state = TimerRunning
	t.index = index
	t.planned = minutes * 60
	t.spent = 0
	return true
}

// Tick advances the running countdown by one second. It returns true when
// the current item has just completed; the full planned time is then folded
// into the total. Ticks while not running are ignored.
func (t *MeditationTimer) Tick() bool {
	if t.state != TimerRunning {
		return false
	}
	t.spent++
	if t.spent < t.planned {
		return false
	}
	t.state = TimerStopped
	t.total += t.planned
	t.spent = 0
	_ = t.tracker.set(domain.CategoryMeditation, t.index, domain.StatusCompleted)
	return true
}

// Interrupt stops a running countdown, folds the partial seconds into the
// total and marks the current item skipped. Stop and fold happen in one
// step, so a tick can never be counted twice. It returns the seconds folded.
func (t *MeditationTimer) Interrupt() int {
	if t.state != TimerRunning {
		return 0
	}
	partial := t.spent
	t.state = TimerStopped
	t.total += partial
	t.spent = 0
	_ = t.tracker.set(domain.CategoryMeditation, t.index, domain.StatusSkipped)
	return partial
}

func (t *MeditationTimer) State() TimerState { return t.state }

// Index returns the meditation item the timer last started.
func (t *MeditationTimer) Index() int { return t.index }

// Remaining returns the seconds left on the running item.
func (t *MeditationTimer) Remaining() int {
	if t.state != TimerRunning {
		return 0
	}
	return max(t.planned-t.spent, 0)
}

// PlannedCurrent returns the planned seconds of the running item.
func (t *MeditationTimer) PlannedCurrent() int {
	if t.state != TimerRunning {
		return 0
	}
	return t.planned
}

// SpentCurrent returns the seconds spent on the running item.
func (t *MeditationTimer) SpentCurrent() int {
	if t.state != TimerRunning {
		return 0
	}
	return t.spent
}

// Total returns the accumulated seconds of finished and interrupted items.
func (t *MeditationTimer) Total() int { return t.total }

// Effective returns the accumulated seconds plus the live seconds of the
// running item.
func (t *MeditationTimer) Effective() int {
	return t.total + t.SpentCurrent()
}

// Planned returns the planned seconds over all meditation items.
func (t *MeditationTimer) Planned() int { return t.totalPlanned }

// Ratio returns the fraction of planned meditation time spent, capped at 1.
func (t *MeditationTimer) Ratio() float64 {
	if t.totalPlanned <= 0 {
		return 0
	}
	return min(float64(t.Effective())/float64(t.totalPlanned), 1)
}
