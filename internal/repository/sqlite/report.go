package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

// ReportRepository implements domain.SessionReportRepository using SQLite.
// Full reports are kept as JSON next to the columns used for listing.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db.SqlDB}
}

func (r *ReportRepository) Create(ctx context.Context, s *domain.SubmittedSession) error {
	data, err := json.Marshal(s.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO submitted_sessions (user_id, progress, points, time_minutes, report_json, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Report.Progress, s.Report.Points, s.Report.ElapsedMinutes, string(data), s.SubmittedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert submitted session: %w", err)
	}
	if s.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("get submitted session id: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent submissions, newest first.
func (r *ReportRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.SubmittedSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, report_json, submitted_at FROM submitted_sessions
		 WHERE user_id = ? ORDER BY submitted_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list submitted sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.SubmittedSession
	for rows.Next() {
		var (
			s    domain.SubmittedSession
			data string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &data, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submitted session: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &s.Report); err != nil {
			return nil, fmt.Errorf("decode submitted session %d: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertDaily records the day's result. When the day already has a row the
// higher progress and points are kept.
func (r *ReportRepository) UpsertDaily(ctx context.Context, d domain.DailyProgress) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_progress (user_id, day, progress, points) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, day) DO UPDATE SET
		   progress = MAX(progress, excluded.progress),
		   points = MAX(points, excluded.points)`,
		d.UserID, d.Date.UTC().Format(dayLayout), d.Progress, d.Points,
	)
	if err != nil {
		return fmt.Errorf("upsert daily progress: %w", err)
	}
	return nil
}

// ListDaily returns the recorded days between from and to inclusive, oldest
// first.
func (r *ReportRepository) ListDaily(ctx context.Context, userID int64, from, to time.Time) ([]domain.DailyProgress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT day, progress, points FROM daily_progress
		 WHERE user_id = ? AND day BETWEEN ? AND ? ORDER BY day`,
		userID, from.UTC().Format(dayLayout), to.UTC().Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("list daily progress: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyProgress
	for rows.Next() {
		d := domain.DailyProgress{UserID: userID}
		var day string
		if err := rows.Scan(&day, &d.Progress, &d.Points); err != nil {
			return nil, fmt.Errorf("scan daily progress: %w", err)
		}
		if d.Date, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
