package handler

import (
	"net/http"

	"github.com/msomdec/healthyu/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the dependencies of the HTTP surface. Nil limiters disable
// rate limiting.
type Services struct {
	Auth          *service.AuthService
	Plans         *service.PlanService
	Player        *service.PlayerService
	Reports       *service.ReportService
	Progress      *service.ProgressService
	LoginLimiter  *service.RateLimiter
	SubmitLimiter *service.RateLimiter
	Health        map[string]HealthCheck
	CookieSecure  bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authH := NewAuthHandler(s.Auth, s.CookieSecure)
	profileH := NewProfileHandler(s.Plans, s.Player, s.Reports)
	planH := NewPlanHandler(s.Plans, s.Reports)
	playerH := NewPlayerHandler(s.Player, s.Reports)
	reportH := NewReportHandler(s.Reports)
	progressH := NewProgressHandler(s.Progress, s.Reports)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(s.Auth, h)
	}

	mux.HandleFunc("GET /healthz", NewHealthHandler(s.Health).HandleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /{$}", OptionalAuth(s.Auth, http.HandlerFunc(HandleHome)))
	mux.HandleFunc("GET /register", authH.HandleRegisterPage)
	mux.HandleFunc("POST /register", authH.HandleRegister)
	mux.HandleFunc("GET /login", authH.HandleLoginPage)
	mux.Handle("POST /login", RateLimit(s.LoginLimiter, "login", clientIP, http.HandlerFunc(authH.HandleLogin)))
	mux.HandleFunc("POST /logout", authH.HandleLogout)
	mux.Handle("GET /api/auth/me", protected(authH.HandleMe))

	mux.Handle("GET /profile", protected(profileH.HandleProfile))

	mux.Handle("GET /plan", protected(planH.HandlePlan))
	mux.Handle("GET /plan/new", protected(planH.HandleNew))
	mux.Handle("POST /plan/delete", protected(planH.HandleDelete))
	mux.Handle("GET /api/plan", protected(planH.HandleGet))
	mux.Handle("POST /api/plan", protected(planH.HandleCreate))

	mux.Handle("POST /session/start", protected(playerH.HandleStart))
	mux.Handle("GET /session/report", protected(reportH.HandlePage))
	mux.Handle("POST /session/report/discard", protected(reportH.HandleDiscard))
	mux.Handle("GET /session/{id}", protected(playerH.HandleView))
	mux.Handle("GET /session/{id}/stream", protected(playerH.HandleStream))
	mux.Handle("POST /session/{id}/{action}", protected(playerH.HandleAction))
	mux.Handle("POST /api/sessions/submit", RequireAuth(s.Auth,
		RateLimit(s.SubmitLimiter, "submit", userKey, http.HandlerFunc(reportH.HandleSubmit))))

	mux.Handle("GET /progress", protected(progressH.HandlePage))
	mux.Handle("GET /api/progress", protected(progressH.HandleAPI))
}
