package session

import (
	"testing"

	"github.com/msomdec/healthyu/internal/domain"
)

func TestMaxSkips(t *testing.T) {
	tests := []struct {
		p, y, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{4, 0, 1},
		{4, 4, 2},
		{5, 6, 2},
		{10, 10, 5},
	}
	for _, tt := range tests {
		if got := MaxSkips(tt.p, tt.y); got != tt.want {
			t.Errorf("MaxSkips(%d, %d) = %d, want %d", tt.p, tt.y, got, tt.want)
		}
	}
}

func TestSkipGovernor_ReadsTrackerEveryCall(t *testing.T) {
	tr := NewStatusTracker(Input{Physical: items("P", 4, domain.UnitFrequency, 10), Yoga: items("Y", 4, domain.UnitMinutes, 5)})
	g := NewSkipGovernor(tr)

	if !g.CanSkip() || g.Max() != 2 {
		t.Fatalf("expected fresh governor with max 2, got max %d", g.Max())
	}
	_ = tr.Mark(domain.CategoryYoga, 3, domain.StatusSkipped)
	_ = tr.Mark(domain.CategoryPhysical, 0, domain.StatusSkipped)
	if g.Used() != 2 || g.CanSkip() {
		t.Fatalf("expected quota exhausted, used %d", g.Used())
	}
}
