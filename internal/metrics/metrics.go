// Package metrics exposes Prometheus metrics for live sessions, saved
// reports and the report stash. Labels never carry user or session IDs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsStartedTotal counts guided sessions started.
	SessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthyu_sessions_started_total",
		Help: "Total number of guided sessions started.",
	})

	// SessionsEndedTotal counts guided sessions that reached the ended state,
	// by how they ended (finished, ended, replaced, expired).
	SessionsEndedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthyu_sessions_ended_total",
		Help: "Total number of guided sessions ended, by reason.",
	}, []string{"reason"})

	// SessionActionsTotal counts player actions by action and outcome.
	SessionActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthyu_session_actions_total",
		Help: "Total number of player actions, by action and result (ok/rejected).",
	}, []string{"action", "result"})

	// ActiveSessions tracks live sessions held in memory.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "healthyu_active_sessions",
		Help: "Current number of live guided sessions.",
	})

	// ReportProgress observes the final progress of every ended session.
	ReportProgress = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthyu_report_progress_percent",
		Help:    "Final progress of ended sessions, in percent.",
		Buckets: []float64{10, 25, 50, 75, 90, 100},
	})

	// ReportsSubmittedTotal counts report submissions by result.
	ReportsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthyu_reports_submitted_total",
		Help: "Total number of report submissions, by result (saved/too_low/duplicate/error).",
	}, []string{"result"})

	// StashOperationsTotal counts report stash operations by backend, operation and result.
	StashOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthyu_stash_operations_total",
		Help: "Total number of report stash operations, by backend, op and result.",
	}, []string{"backend", "op", "result"})

	// RateLimitedTotal counts requests rejected by the rate limiter, by route.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthyu_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter, by route.",
	}, []string{"route"})
)

// RecordSessionStarted counts a new live session.
func RecordSessionStarted() {
	SessionsStartedTotal.Inc()
	ActiveSessions.Inc()
}

// RecordSessionEnded counts a live session leaving memory.
func RecordSessionEnded(reason string) {
	SessionsEndedTotal.WithLabelValues(reason).Inc()
	ActiveSessions.Dec()
}

// RecordAction counts a player action.
func RecordAction(action string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	SessionActionsTotal.WithLabelValues(action, result).Inc()
}

// RecordReportProgress observes a final report's progress.
func RecordReportProgress(progress float64) {
	ReportProgress.Observe(progress)
}

// RecordSubmission counts a report submission.
func RecordSubmission(result string) {
	ReportsSubmittedTotal.WithLabelValues(result).Inc()
}

// RecordStash counts a stash operation.
func RecordStash(backend, op, result string) {
	StashOperationsTotal.WithLabelValues(backend, op, result).Inc()
}

// RecordRateLimited counts a rejected request.
func RecordRateLimited(route string) {
	RateLimitedTotal.WithLabelValues(route).Inc()
}
