package session

import (
	"math"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

// BuildReport freezes a session into its final report. It reads no clock and
// has no side effects: the same state always yields the same report.
func BuildReport(in Input, order []domain.Category, tracker *StatusTracker, timer *MeditationTimer, startedAt, endedAt time.Time) domain.SessionReport {
	ratios := ComputeRatios(order, tracker, timer)
	weight := categoryWeight(len(order))

	report := domain.SessionReport{
		Progress:        round1(ratios.Progress(weight)),
		Points:          ratios.Points(weight),
		ElapsedMinutes:  max(int(math.Round(endedAt.Sub(startedAt).Minutes())), 0),
		Physical:        reportItems(in.Physical, tracker.Statuses(domain.CategoryPhysical)),
		Yoga:            reportItems(in.Yoga, tracker.Statuses(domain.CategoryYoga)),
		MeditationItems: reportItems(in.Meditation, tracker.Statuses(domain.CategoryMeditation)),
		Meditation:      meditationSummary(in.Meditation, timer),
	}
	return report
}

func reportItems(items []domain.ExerciseItem, statuses []domain.ItemStatus) []domain.ReportItem {
	out := make([]domain.ReportItem, len(items))
	for i, it := range items {
		status := domain.StatusPending
		if i < len(statuses) {
			status = statuses[i]
		}
		out[i] = domain.ReportItem{Name: it.Name, Value: it.Value, Unit: it.Unit, Status: status}
	}
	return out
}

func meditationSummary(items []domain.ExerciseItem, timer *MeditationTimer) domain.MeditationSummary {
	if len(items) == 0 {
		return domain.MeditationSummary{Status: domain.MeditationNotPlanned}
	}

	planned := 0
	for _, it := range items {
		planned += plannedMinutes(it)
	}
	summary := domain.MeditationSummary{PlannedMinutes: planned}
	if timer.Planned() > 0 {
		summary.SpentMinutes = round1(float64(timer.Effective()) / 60)
	}

	switch ratio := timer.Ratio(); {
	case ratio >= 1:
		summary.Status = domain.MeditationCompleted
	case ratio > 0:
		summary.Status = domain.MeditationPartial
	default:
		summary.Status = domain.MeditationSkipped
	}
	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func cloneReport(r domain.SessionReport) domain.SessionReport {
	r.Physical = append([]domain.ReportItem(nil), r.Physical...)
	r.Yoga = append([]domain.ReportItem(nil), r.Yoga...)
	r.MeditationItems = append([]domain.ReportItem(nil), r.MeditationItems...)
	return r
}
