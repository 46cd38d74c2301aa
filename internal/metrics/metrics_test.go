package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msomdec/healthyu/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSessionLifecycle(t *testing.T) {
	before := testutil.ToFloat64(metrics.ActiveSessions)

	metrics.RecordSessionStarted()
	if got := testutil.ToFloat64(metrics.ActiveSessions); got != before+1 {
		t.Fatalf("expected active sessions %v, got %v", before+1, got)
	}

	ended := testutil.ToFloat64(metrics.SessionsEndedTotal.WithLabelValues("finished"))
	metrics.RecordSessionEnded("finished")
	if got := testutil.ToFloat64(metrics.ActiveSessions); got != before {
		t.Fatalf("expected active sessions back to %v, got %v", before, got)
	}
	if got := testutil.ToFloat64(metrics.SessionsEndedTotal.WithLabelValues("finished")); got != ended+1 {
		t.Fatalf("expected ended counter %v, got %v", ended+1, got)
	}
}

func TestRecordAction(t *testing.T) {
	ok := testutil.ToFloat64(metrics.SessionActionsTotal.WithLabelValues("skip", "ok"))
	rejected := testutil.ToFloat64(metrics.SessionActionsTotal.WithLabelValues("skip", "rejected"))

	metrics.RecordAction("skip", true)
	metrics.RecordAction("skip", false)
	metrics.RecordAction("skip", false)

	if got := testutil.ToFloat64(metrics.SessionActionsTotal.WithLabelValues("skip", "ok")); got != ok+1 {
		t.Fatalf("ok: got %v, want %v", got, ok+1)
	}
	if got := testutil.ToFloat64(metrics.SessionActionsTotal.WithLabelValues("skip", "rejected")); got != rejected+2 {
		t.Fatalf("rejected: got %v, want %v", got, rejected+2)
	}
}

func TestPromhttpExposure(t *testing.T) {
	metrics.RecordSubmission("saved")
	metrics.RecordStash("memory", "get", "hit")
	metrics.RecordReportProgress(75)

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"healthyu_reports_submitted_total",
		"healthyu_stash_operations_total",
		"healthyu_report_progress_percent_bucket",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}
