package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/metrics"
)

// MinSaveProgress is the lowest progress, in percent, a report can be saved with.
const MinSaveProgress = 50

// SubmitResult is the feedback shown after a report is saved.
type SubmitResult struct {
	Message string `json:"message"`
	Streak  int    `json:"streak"`
	Points  int    `json:"points"` // profile total after the save
	Earned  int    `json:"earned"`
}

// ReportService hands finished session reports to the user and saves the
// ones they keep.
type ReportService struct {
	reports  domain.SessionReportRepository
	profiles domain.ProfileRepository
	stash    domain.ReportStash
	now      func() time.Time
}

func NewReportService(reports domain.SessionReportRepository, profiles domain.ProfileRepository, stash domain.ReportStash) *ReportService {
	return &ReportService{reports: reports, profiles: profiles, stash: stash, now: time.Now}
}

// Pending returns the user's last unsaved report, or domain.ErrNotFound.
func (s *ReportService) Pending(ctx context.Context, userID int64) (*domain.SessionReport, error) {
	r, err := s.stash.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sanitized := Sanitize(*r)
	return &sanitized, nil
}

// Discard drops the user's unsaved report. Discarding with nothing
// pending is not an error.
func (s *ReportService) Discard(ctx context.Context, userID int64) error {
	if err := s.stash.Delete(ctx, userID); err != nil {
		return fmt.Errorf("discard report: %w", err)
	}
	return nil
}

// Profile returns the user's points and streak.
func (s *ReportService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// Recent returns the user's latest saved sessions, newest first.
func (s *ReportService) Recent(ctx context.Context, userID int64, limit int) ([]domain.SubmittedSession, error) {
	return s.reports.ListByUser(ctx, userID, limit)
}

// Sanitize caps progress and points to 0..100 and elapsed time to >= 0.
// Reports come back from the client, so nothing in them is trusted.
func Sanitize(r domain.SessionReport) domain.SessionReport {
	if math.IsNaN(r.Progress) {
		r.Progress = 0
	}
	r.Progress = min(max(r.Progress, 0), 100)
	r.Points = min(max(r.Points, 0), 100)
	r.ElapsedMinutes = max(r.ElapsedMinutes, 0)
	return r
}

// Submit saves a report: the session itself, the day's best result, the
// streak and the points. Reports under MinSaveProgress and a second save
// on the same day are rejected. The stashed report is removed only after
// everything was stored.
func (s *ReportService) Submit(ctx context.Context, userID int64, report domain.SessionReport) (*SubmitResult, error) {
	report = Sanitize(report)
	if report.Progress < MinSaveProgress {
		metrics.RecordSubmission("too_low")
		return nil, fmt.Errorf("%w: progress %.1f%% is below %d%%", domain.ErrProgressTooLow, report.Progress, MinSaveProgress)
	}

	now := s.now().UTC()
	today := Day(now)

	saved, err := s.reports.ListDaily(ctx, userID, today, today)
	if err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("check today's progress: %w", err)
	}
	if len(saved) > 0 {
		metrics.RecordSubmission("duplicate")
		return nil, domain.ErrAlreadySubmitted
	}

	if err := s.reports.Create(ctx, &domain.SubmittedSession{UserID: userID, Report: report, SubmittedAt: now}); err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := s.reports.UpsertDaily(ctx, domain.DailyProgress{
		UserID:   userID,
		Date:     today,
		Progress: int(math.Round(report.Progress)),
		Points:   report.Points,
	}); err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("save daily progress: %w", err)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("get profile: %w", err)
	}
	profile.Streak = NextStreak(profile.LastActivity, profile.Streak, today)
	profile.Points += report.Points
	profile.LastActivity = &today
	if err := s.profiles.Update(ctx, profile); err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if err := s.stash.Delete(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("delete stashed report", "user_id", userID, "error", err)
	}
	metrics.RecordSubmission("saved")

	return &SubmitResult{
		Message: submitMessage(profile.Streak, report.Points, profile.Points),
		Streak:  profile.Streak,
		Points:  profile.Points,
		Earned:  report.Points,
	}, nil
}

// NextStreak applies the daily streak rule: same day keeps the streak,
// the following day extends it, any gap restarts it at 1.
func NextStreak(last *time.Time, streak int, today time.Time) int {
	if last == nil {
		return 1
	}
	switch days := int(today.Sub(Day(*last)).Hours() / 24); {
	case days == 0:
		return max(streak, 1)
	case days == 1:
		return streak + 1
	default:
		return 1
	}
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func submitMessage(streak, earned, total int) string {
	unit := "days"
	if streak == 1 {
		unit = "day"
	}
	return fmt.Sprintf("Session saved! Streak: %d %s. +%d points (total %d).", streak, unit, earned, total)
}
