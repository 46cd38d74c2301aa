package session

import (
	"fmt"

	"github.com/msomdec/healthyu/internal/domain"
)

// StatusTracker holds one status per item for every category. It is the
// single source of truth for completion.
type StatusTracker struct {
	statuses map[domain.Category][]domain.ItemStatus
}

// NewStatusTracker creates a tracker with every item pending.
func NewStatusTracker(in Input) *StatusTracker {
	t := &StatusTracker{statuses: make(map[domain.Category][]domain.ItemStatus, len(domain.Categories))}
	for _, c := range domain.Categories {
		list := make([]domain.ItemStatus, len(in.Items(c)))
		for i := range list {
			list[i] = domain.StatusPending
		}
		t.statuses[c] = list
	}
	return t
}

// Mark sets the status of a physical or yoga item. Meditation statuses are
// owned by the MeditationTimer.
func (t *StatusTracker) Mark(c domain.Category, index int, status domain.ItemStatus) error {
	if c == domain.CategoryMeditation {
		return fmt.Errorf("%w: meditation items are settled by the timer", ErrWrongPhase)
	}
	return t.set(c, index, status)
}

func (t *StatusTracker) set(c domain.Category, index int, status domain.ItemStatus) error {
	list := t.statuses[c]
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %s item %d", ErrNoSuchItem, c, index)
	}
	if !status.Terminal() {
		return fmt.Errorf("%w: cannot set status %q", ErrInvalidStatus, status)
	}
	if list[index].Terminal() {
		return fmt.Errorf("%w: %s item %d is already %s", ErrItemSettled, c, index, list[index])
	}
	list[index] = status
	return nil
}

// Status returns the status of one item, or pending for an out-of-range index.
func (t *StatusTracker) Status(c domain.Category, index int) domain.ItemStatus {
	list := t.statuses[c]
	if index < 0 || index >= len(list) {
		return domain.StatusPending
	}
	return list[index]
}

// Count returns how many items of category c have the given status.
func (t *StatusTracker) Count(c domain.Category, status domain.ItemStatus) int {
	n := 0
	for _, s := range t.statuses[c] {
		if s == status {
			n++
		}
	}
	return n
}

// Len returns the number of items tracked for c.
func (t *StatusTracker) Len(c domain.Category) int {
	return len(t.statuses[c])
}

// Statuses returns a copy of the status list of c.
func (t *StatusTracker) Statuses(c domain.Category) []domain.ItemStatus {
	return append([]domain.ItemStatus(nil), t.statuses[c]...)
}
