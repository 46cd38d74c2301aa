package session

import (
	"errors"
	"testing"

	"github.com/msomdec/healthyu/internal/domain"
)

func TestStatusTracker_Mark(t *testing.T) {
	tr := NewStatusTracker(Input{
		Physical:   items("P", 2, domain.UnitFrequency, 10),
		Meditation: meditations(1),
	})

	if err := tr.Mark(domain.CategoryPhysical, 0, domain.StatusCompleted); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := tr.Mark(domain.CategoryPhysical, 0, domain.StatusSkipped); !errors.Is(err, ErrItemSettled) {
		t.Fatalf("expected ErrItemSettled, got %v", err)
	}
	if err := tr.Mark(domain.CategoryPhysical, 1, domain.StatusPending); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := tr.Mark(domain.CategoryPhysical, 5, domain.StatusCompleted); !errors.Is(err, ErrNoSuchItem) {
		t.Fatalf("expected ErrNoSuchItem, got %v", err)
	}
	if err := tr.Mark(domain.CategoryMeditation, 0, domain.StatusCompleted); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}

	if got := tr.Count(domain.CategoryPhysical, domain.StatusCompleted); got != 1 {
		t.Fatalf("expected 1 completed, got %d", got)
	}
	if got := tr.Count(domain.CategoryPhysical, domain.StatusPending); got != 1 {
		t.Fatalf("expected 1 pending, got %d", got)
	}

	copied := tr.Statuses(domain.CategoryPhysical)
	copied[1] = domain.StatusSkipped
	if tr.Status(domain.CategoryPhysical, 1) != domain.StatusPending {
		t.Fatal("Statuses must return a copy")
	}
}
