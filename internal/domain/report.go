package domain

import (
	"context"
	"time"
)

// ItemStatus is the completion state of one session item.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusCompleted ItemStatus = "completed"
	StatusSkipped   ItemStatus = "skipped"
)

// Terminal reports whether the status can no longer change.
func (s ItemStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// MeditationStatus summarises the meditation phase of a finished session.
type MeditationStatus string

const (
	MeditationNotPlanned MeditationStatus = "not_planned"
	MeditationSkipped    MeditationStatus = "skipped"
	MeditationPartial    MeditationStatus = "partial"
	MeditationCompleted  MeditationStatus = "completed"
)

// SessionReport is the immutable summary of a finished session.
type SessionReport struct {
	Progress        float64           `json:"progress"`
	Points          int               `json:"points"`
	ElapsedMinutes  int               `json:"time_minutes"`
	Physical        []ReportItem      `json:"physical"`
	Yoga            []ReportItem      `json:"yoga"`
	MeditationItems []ReportItem      `json:"meditation_items"`
	Meditation      MeditationSummary `json:"meditation"`
}

// ReportItem is the final state of a single plan item.
type ReportItem struct {
	Name   string     `json:"name"`
	Value  int        `json:"value"`
	Unit   Unit       `json:"unit"`
	Status ItemStatus `json:"status"`
}

// MeditationSummary aggregates the meditation phase. SpentMinutes keeps one
// decimal so half a minute is still visible.
type MeditationSummary struct {
	PlannedMinutes int              `json:"planned_minutes"`
	SpentMinutes   float64          `json:"spent_minutes"`
	Status         MeditationStatus `json:"status"`
}

// SubmittedSession is a report the user chose to save.
type SubmittedSession struct {
	ID          int64
	UserID      int64
	Report      SessionReport
	SubmittedAt time.Time
}

// DailyProgress is the best saved result of one day.
type DailyProgress struct {
	UserID   int64
	Date     time.Time // UTC midnight
	Progress int       // 0-100
	Points   int
}

type SessionReportRepository interface {
	Create(ctx context.Context, s *SubmittedSession) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]SubmittedSession, error)
	// UpsertDaily records a day's result, keeping the higher progress and points
	// when the day already has a row.
	UpsertDaily(ctx context.Context, d DailyProgress) error
	ListDaily(ctx context.Context, userID int64, from, to time.Time) ([]DailyProgress, error)
}

// ReportStash holds the report of a user's last ended session until it is
// saved or replaced. Get returns ErrNotFound when no readable report exists.
type ReportStash interface {
	Put(ctx context.Context, userID int64, report SessionReport) error
	Get(ctx context.Context, userID int64) (*SessionReport, error)
	Delete(ctx context.Context, userID int64) error
}
