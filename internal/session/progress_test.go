package session

import (
	"testing"

	"github.com/msomdec/healthyu/internal/domain"
)

func TestRatios_Progress(t *testing.T) {
	r := Ratios{
		domain.CategoryPhysical:   1,
		domain.CategoryYoga:       0.5,
		domain.CategoryMeditation: 0.25,
	}
	weight := categoryWeight(3)
	if got, want := r.Progress(weight), 175.0/3; got-want > 1e-9 || want-got > 1e-9 {
		t.Fatalf("Progress = %v, want %v", got, want)
	}
	if got := r.Points(weight); got != 58 {
		t.Fatalf("Points = %d, want 58", got)
	}
	if got := (Ratios{}).Progress(categoryWeight(0)); got != 0 {
		t.Fatalf("empty progress = %v, want 0", got)
	}
}
