package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
)

func TestProfileRepository_GetAndUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := db.Profiles()
	ctx := context.Background()
	user := createUser(t, db, "profile@example.com")

	p, err := repo.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Points != 0 || p.Streak != 0 || p.LastActivity != nil {
		t.Fatalf("expected empty profile, got %+v", p)
	}

	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	p.Points = 75
	p.Streak = 3
	p.LastActivity = &day
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Points != 75 || got.Streak != 3 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if got.LastActivity == nil || !got.LastActivity.Equal(day) {
		t.Fatalf("expected last activity %v, got %v", day, got.LastActivity)
	}
}

func TestProfileRepository_GetCreatesMissingRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "legacy@example.com")

	if _, err := db.SqlDB.ExecContext(ctx, "DELETE FROM profiles WHERE user_id = ?", user.ID); err != nil {
		t.Fatal(err)
	}
	p, err := db.Profiles().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UserID != user.ID {
		t.Fatalf("expected profile for user %d, got %d", user.ID, p.UserID)
	}
}

func TestProfileRepository_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.Profiles().Get(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if err := db.Profiles().Update(ctx, &domain.Profile{UserID: 404}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
}
