package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

const (
	chartDays   = 30
	chartWeeks  = 8
	chartMonths = 6
)

// Series is one chart: a label per bucket with the bucket's progress and
// points. Days without a saved session count as zero.
type Series struct {
	Labels   []string  `json:"labels"`
	Progress []float64 `json:"progress"`
	Points   []float64 `json:"points"`
}

// ProgressCharts holds the daily, weekly and monthly charts.
type ProgressCharts struct {
	Daily   Series `json:"daily"`
	Weekly  Series `json:"weekly"`
	Monthly Series `json:"monthly"`
}

// ProgressService builds chart data from saved daily results.
type ProgressService struct {
	reports domain.SessionReportRepository
	now     func() time.Time
}

func NewProgressService(reports domain.SessionReportRepository) *ProgressService {
	return &ProgressService{reports: reports, now: time.Now}
}

// Charts returns the last 30 days, the last 8 ISO weeks as daily averages
// and the last 6 months as daily averages, each ending today.
func (s *ProgressService) Charts(ctx context.Context, userID int64) (*ProgressCharts, error) {
	today := Day(s.now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(chartMonths - 1), 0)
	weekStart := isoWeekStart(today).AddDate(0, 0, -7*(chartWeeks-1))
	from := minTime(minTime(monthStart, weekStart), today.AddDate(0, 0, -(chartDays-1)))

	rows, err := s.reports.ListDaily(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("list daily progress: %w", err)
	}
	byDay := make(map[time.Time]domain.DailyProgress, len(rows))
	for _, r := range rows {
		byDay[Day(r.Date)] = r
	}

	charts := &ProgressCharts{}

	for i := chartDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		r := byDay[d]
		charts.Daily.add(d.Format("Jan 2"), float64(r.Progress), float64(r.Points))
	}

	for i := chartWeeks - 1; i >= 0; i-- {
		start := isoWeekStart(today).AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 6)
		year, week := start.ISOWeek()
		p, pts := average(byDay, start, minTime(end, today))
		charts.Weekly.add(fmt.Sprintf("%d-W%02d", year, week), p, pts)
	}

	for i := chartMonths - 1; i >= 0; i-- {
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, -1)
		p, pts := average(byDay, start, minTime(end, today))
		charts.Monthly.add(start.Format("Jan 2006"), p, pts)
	}

	return charts, nil
}

func (s *Series) add(label string, progress, points float64) {
	s.Labels = append(s.Labels, label)
	s.Progress = append(s.Progress, progress)
	s.Points = append(s.Points, points)
}

// average returns the mean progress and points per day over [from, to],
// rounded to one decimal.
func average(byDay map[time.Time]domain.DailyProgress, from, to time.Time) (float64, float64) {
	var days, progress, points int
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days++
		r := byDay[d]
		progress += r.Progress
		points += r.Points
	}
	if days == 0 {
		return 0, 0
	}
	round := func(v float64) float64 { return math.Round(v*10) / 10 }
	return round(float64(progress) / float64(days)), round(float64(points) / float64(days))
}

// isoWeekStart returns the Monday of d's ISO week.
func isoWeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
