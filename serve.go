package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/healthyu/internal/catalog"
	"github.com/msomdec/healthyu/internal/config"
	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/handler"
	"github.com/msomdec/healthyu/internal/repository/sqlite"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/stash"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	stashSweepInterval = time.Minute
	shutdownTimeout    = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	setupLogger(level)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load exercise catalog: %w", err)
	}

	health := map[string]handler.HealthCheck{"database": db.Ping}
	var (
		reportStash domain.ReportStash
		memory      *stash.Memory
	)
	if cfg.Redis.Addr != "" {
		r, err := stash.NewRedis(ctx, stash.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.ReportTTL)
		if err != nil {
			return err
		}
		defer r.Close()
		reportStash = r
		health["redis"] = r.HealthCheck
	} else {
		memory = stash.NewMemory(cfg.ReportTTL)
		reportStash = memory
		slog.Info("keeping session reports in memory")
	}

	plans := service.NewPlanService(db.Plans(), cat)
	player := service.NewPlayerService(plans, reportStash, cfg.TickInterval)
	services := handler.Services{
		Auth:          service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost),
		Plans:         plans,
		Player:        player,
		Reports:       service.NewReportService(db.Reports(), db.Profiles(), reportStash),
		Progress:      service.NewProgressService(db.Reports()),
		LoginLimiter:  service.NewRateLimiter(5.0/60, 5),
		SubmitLimiter: service.NewRateLimiter(1, 3),
		Health:        health,
		CookieSecure:  cfg.CookieSecure,
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, services)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return player.Run(gctx)
	})
	if memory != nil {
		g.Go(func() error {
			memory.Run(gctx, stashSweepInterval)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})

	return g.Wait()
}
