package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository using SQLite.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db.SqlDB}
}

// Get returns the user's profile. Users created before profiles existed get
// an empty one on first access.
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, updated_at) VALUES (?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, time.Now().UTC(),
	); err != nil {
		if isForeignKeyError(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	p := &domain.Profile{}
	var last sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, points, streak, last_activity, updated_at FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Points, &p.Streak, &last, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if last.Valid {
		day, err := time.Parse(dayLayout, last.String)
		if err != nil {
			return nil, fmt.Errorf("parse last activity %q: %w", last.String, err)
		}
		p.LastActivity = &day
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	var last any
	if p.LastActivity != nil {
		last = p.LastActivity.UTC().Format(dayLayout)
	}
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET points = ?, streak = ?, last_activity = ?, updated_at = ? WHERE user_id = ?`,
		p.Points, p.Streak, last, now, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}
