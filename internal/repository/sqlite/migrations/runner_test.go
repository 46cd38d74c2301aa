package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/healthyu/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A single connection keeps the in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	return db
}

func TestRun(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	pending, err := migrations.Pending(ctx, db)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	want := []string{"001_users.sql", "002_profiles.sql", "003_plans.sql", "004_reports.sql"}
	if diff := cmp.Diff(want, pending); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(want, applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO users (email, display_name, password_hash) VALUES (?, ?, ?)",
		"test@example.com", "Test User", "hash123",
	); err != nil {
		t.Fatalf("insert into users: %v", err)
	}
}

func TestRunIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	applied, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing applied on second run, got %v", applied)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 migration records, got %d", count)
	}
}

func TestSchemaChecks(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO users (email, display_name, password_hash) VALUES ('a@b.c', 'A', 'h')"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO plans (user_id) VALUES (1)"); err != nil {
		t.Fatal(err)
	}

	bad := []string{
		"INSERT INTO plans (user_id) VALUES (1)",
		"INSERT INTO plan_items (plan_id, name, category, value, unit) VALUES (1, 'x', 'dance', 1, 'min')",
		"INSERT INTO plan_items (plan_id, name, category, value, unit) VALUES (1, 'x', 'yoga', 0, 'min')",
		"INSERT INTO plan_items (plan_id, name, category, value, unit) VALUES (1, 'x', 'yoga', 1, 'reps')",
		"INSERT INTO plan_items (plan_id, name, category, value, unit) VALUES (99, 'x', 'yoga', 1, 'min')",
		"INSERT INTO daily_progress (user_id, day, progress, points) VALUES (1, '2026-01-01', 101, 1)",
	}
	for _, stmt := range bad {
		if _, err := db.ExecContext(ctx, stmt); err == nil {
			t.Errorf("expected %q to be rejected", stmt)
		}
	}
}
