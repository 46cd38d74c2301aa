package session

import "github.com/msomdec/healthyu/internal/domain"

// MaxSkips is the skip quota for a session: a quarter of the physical and
// yoga items combined, rounded down. Meditation items do not count.
func MaxSkips(physical, yoga int) int {
	return (physical + yoga) / 4
}

// SkipGovernor enforces the skip quota. Counts are read from the tracker on
// every call so the answer is correct in any reachable state.
type SkipGovernor struct {
	tracker *StatusTracker
	max     int
}

// NewSkipGovernor creates a governor for the tracker's physical and yoga items.
func NewSkipGovernor(tracker *StatusTracker) *SkipGovernor {
	return &SkipGovernor{
		tracker: tracker,
		max:     MaxSkips(tracker.Len(domain.CategoryPhysical), tracker.Len(domain.CategoryYoga)),
	}
}

// Max returns the skip quota.
func (g *SkipGovernor) Max() int { return g.max }

// Used returns the number of physical and yoga items skipped so far.
func (g *SkipGovernor) Used() int {
	return g.tracker.Count(domain.CategoryPhysical, domain.StatusSkipped) +
		g.tracker.Count(domain.CategoryYoga, domain.StatusSkipped)
}

// CanSkip reports whether one more physical or yoga skip is allowed.
func (g *SkipGovernor) CanSkip() bool {
	return g.Used() < g.max
}
