package session

import (
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	Phases     []domain.Category
	Phase      domain.Category // "" once ended
	PhaseIndex int
	ItemIndex  int // cursor, or the meditation item index during meditation
	ItemCount  int
	Item       *domain.ExerciseItem

	Progress  float64
	Weight    float64
	SkipsUsed int
	MaxSkips  int

	Timer    TimerSnapshot
	Statuses map[domain.Category][]domain.ItemStatus

	StartedAt time.Time
	Ended     bool
}

// TimerSnapshot describes the meditation countdown.
type TimerSnapshot struct {
	State            TimerState
	RemainingSeconds int
	PlannedSeconds   int // current item
	SpentSeconds     int // current item
	TotalSpent       int // accumulated over finished items
	TotalPlanned     int // all meditation items
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Phases:     append([]domain.Category(nil), c.order...),
		Phase:      c.Phase(),
		PhaseIndex: c.phaseIndex,
		Progress:   c.Progress(),
		Weight:     c.weight,
		SkipsUsed:  c.governor.Used(),
		MaxSkips:   c.governor.Max(),
		Timer: TimerSnapshot{
			State:            c.timer.State(),
			RemainingSeconds: c.timer.Remaining(),
			PlannedSeconds:   c.timer.PlannedCurrent(),
			SpentSeconds:     c.timer.SpentCurrent(),
			TotalSpent:       c.timer.Total(),
			TotalPlanned:     c.timer.Planned(),
		},
		Statuses:  make(map[domain.Category][]domain.ItemStatus, len(domain.Categories)),
		StartedAt: c.startedAt,
		Ended:     c.ended,
	}
	for _, cat := range domain.Categories {
		s.Statuses[cat] = c.tracker.Statuses(cat)
	}

	if s.Phase == "" {
		return s
	}
	items := c.in.Items(s.Phase)
	s.ItemCount = len(items)
	s.ItemIndex = c.cursor
	if s.Phase == domain.CategoryMeditation {
		s.ItemIndex = c.medIndex
	}
	if s.ItemIndex < len(items) {
		it := cloneItem(items[s.ItemIndex])
		s.Item = &it
	}
	return s
}

func cloneItem(it domain.ExerciseItem) domain.ExerciseItem {
	it.Steps = append([]string(nil), it.Steps...)
	return it
}
