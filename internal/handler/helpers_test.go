package handler_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/healthyu/internal/catalog"
	"github.com/msomdec/healthyu/internal/handler"
	"github.com/msomdec/healthyu/internal/repository/sqlite"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/stash"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	db       *sqlite.DB
	stash    *stash.Memory
	services handler.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reportStash := stash.NewMemory(time.Hour)
	plans := service.NewPlanService(db.Plans(), cat)
	player := service.NewPlayerService(plans, reportStash, time.Second)
	t.Cleanup(player.Shutdown)

	return &testEnv{
		db:    db,
		stash: reportStash,
		services: handler.Services{
			Auth:     service.NewAuthService(db.Users(), testJWTSecret, 4),
			Plans:    plans,
			Player:   player,
			Reports:  service.NewReportService(db.Reports(), db.Profiles(), reportStash),
			Progress: service.NewProgressService(db.Reports()),
			Health:   map[string]handler.HealthCheck{"database": db.Ping},
		},
	}
}

// server starts the full route table behind SecurityHeaders.
func (e *testEnv) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, e.services)
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a client with a cookie jar that does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) loginToken(t *testing.T, email, name string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := e.services.Auth.Register(ctx, email, name, "password123", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := e.services.Auth.Login(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}
