package session

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/healthyu/internal/domain"
)

func TestBuildReport_IsDeterministic(t *testing.T) {
	in := Input{
		Physical:   items("P", 3, domain.UnitFrequency, 10),
		Yoga:       items("Y", 2, domain.UnitMinutes, 5),
		Meditation: meditations(1, 3),
	}
	start := time.Date(2026, 5, 10, 6, 30, 0, 0, time.UTC)
	c, _ := New(in, WithClock(fixedClock(start, 21*time.Minute)))

	mustDo(t, c.Advance)
	mustDo(t, c.Skip)
	mustDo(t, c.Advance)
	mustDo(t, c.Advance)
	mustDo(t, c.Advance)
	ticks(t, c, 60)
	ticks(t, c, 45)
	mustDo(t, c.End)

	first, ok := c.Report()
	if !ok {
		t.Fatal("expected report")
	}
	again := BuildReport(c.in, c.order, c.tracker, c.timer, c.startedAt, c.endedAt)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("report changed between builds (-first +again):\n%s", diff)
	}

	// 2/3 physical, 2/2 yoga, 105/240 meditation, each weighted 100/3.
	want := domain.SessionReport{
		Progress:       70.1,
		Points:         70,
		ElapsedMinutes: 21,
		Physical: []domain.ReportItem{
			{Name: "PA", Value: 10, Unit: domain.UnitFrequency, Status: domain.StatusCompleted},
			{Name: "PB", Value: 10, Unit: domain.UnitFrequency, Status: domain.StatusSkipped},
			{Name: "PC", Value: 10, Unit: domain.UnitFrequency, Status: domain.StatusCompleted},
		},
		Yoga: []domain.ReportItem{
			{Name: "YA", Value: 5, Unit: domain.UnitMinutes, Status: domain.StatusCompleted},
			{Name: "YB", Value: 5, Unit: domain.UnitMinutes, Status: domain.StatusCompleted},
		},
		MeditationItems: []domain.ReportItem{
			{Name: "Breathing A", Value: 1, Unit: domain.UnitMinutes, Status: domain.StatusCompleted},
			{Name: "Breathing B", Value: 3, Unit: domain.UnitMinutes, Status: domain.StatusSkipped},
		},
		Meditation: domain.MeditationSummary{PlannedMinutes: 4, SpentMinutes: 1.8, Status: domain.MeditationPartial},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReport_CloneIsIndependent(t *testing.T) {
	c, _ := New(Input{Physical: items("P", 1, domain.UnitFrequency, 10)})
	mustDo(t, c.End)

	r, _ := c.Report()
	r.Physical[0].Status = domain.StatusCompleted
	again, _ := c.Report()
	if again.Physical[0].Status != domain.StatusPending {
		t.Fatal("Report must return an independent copy")
	}
}
