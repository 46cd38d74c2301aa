package session

import (
	"math"

	"github.com/msomdec/healthyu/internal/domain"
)

// Ratios holds the completion ratio (0..1) of every active category.
type Ratios map[domain.Category]float64

// ComputeRatios derives per-category ratios from the tracker and timer.
// Physical and yoga count completed items; meditation uses time spent over
// time planned.
func ComputeRatios(order []domain.Category, tracker *StatusTracker, timer *MeditationTimer) Ratios {
	r := make(Ratios, len(order))
	for _, c := range order {
		if c == domain.CategoryMeditation {
			r[c] = timer.Ratio()
			continue
		}
		n := tracker.Len(c)
		if n == 0 {
			r[c] = 0
			continue
		}
		r[c] = float64(tracker.Count(c, domain.StatusCompleted)) / float64(n)
	}
	return r
}

// Progress returns the weighted completion percentage, capped at 100.
func (r Ratios) Progress(weight float64) float64 {
	total := 0.0
	// Fixed summation order keeps the result identical between calls.
	for _, c := range domain.Categories {
		if ratio, ok := r[c]; ok {
			total += ratio * weight
		}
	}
	return min(total, 100)
}

// Points returns the points earned, following the same weighting as
// Progress and rounded to a whole number.
func (r Ratios) Points(weight float64) int {
	return min(int(math.Round(r.Progress(weight))), 100)
}
