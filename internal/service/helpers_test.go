package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/repository/sqlite"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(t *testing.T, db *sqlite.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, DisplayName: "Tester", PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
