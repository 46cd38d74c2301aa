package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/healthyu/internal/handler"
)

func TestHandleHealthz(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]handler.HealthCheck
		wantCode   int
		wantStatus string
	}{
		{"no checks", nil, http.StatusOK, "ok"},
		{
			"all healthy",
			map[string]handler.HealthCheck{"database": func(context.Context) error { return nil }},
			http.StatusOK, "ok",
		},
		{
			"redis down",
			map[string]handler.HealthCheck{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			http.StatusServiceUnavailable, "unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.NewHealthHandler(tt.checks).HandleHealthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			resp := w.Result()
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected Content-Type application/json, got %s", ct)
			}

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Fatalf("expected status=%s, got %s", tt.wantStatus, body.Status)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Fatalf("expected %d check results, got %v", len(tt.checks), body.Checks)
			}
		})
	}
}

func TestHandleHealthzRouting(t *testing.T) {
	srv := newTestEnv(t).server(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.StatusCode)
	}
}
