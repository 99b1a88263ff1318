// Package main is the entrypoint for the LabelCheck API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/labelcheck/internal/api"
	"github.com/kiranshivaraju/labelcheck/internal/api/handler"
	mw "github.com/kiranshivaraju/labelcheck/internal/api/middleware"
	"github.com/kiranshivaraju/labelcheck/internal/api/response"
	"github.com/kiranshivaraju/labelcheck/internal/cache"
	"github.com/kiranshivaraju/labelcheck/internal/compare"
	"github.com/kiranshivaraju/labelcheck/internal/config"
	"github.com/kiranshivaraju/labelcheck/internal/idgen"
	"github.com/kiranshivaraju/labelcheck/internal/ocr"
	"github.com/kiranshivaraju/labelcheck/internal/store"
	"github.com/kiranshivaraju/labelcheck/internal/telemetry"
	"github.com/kiranshivaraju/labelcheck/internal/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"store", cfg.Store.Backend,
		"ocr_provider", cfg.OCR.Provider,
		"net_contents_mode", cfg.Worker.NetContentsMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Job store
	jobStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Optional Redis cache
	var jobCache cache.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		jobCache = redisCache
		slog.Info("redis connected")
	}

	// 4. OCR client and validation service
	ocrClient, err := ocr.NewClient(cfg.OCR, slog.Default())
	if err != nil {
		return fmt.Errorf("create OCR client: %w", err)
	}
	slog.Info("OCR client initialized", "provider", ocrClient.Name())

	mode, err := compare.ParseNetContentsMode(cfg.Worker.NetContentsMode)
	if err != nil {
		return fmt.Errorf("net contents mode: %w", err)
	}
	ids, err := idgen.New(cfg.Store.IDScheme)
	if err != nil {
		return fmt.Errorf("id generator: %w", err)
	}

	svc := validation.NewService(jobStore, jobCache, ocrClient, compare.NewEngine(mode), ids, validation.Options{
		Concurrency: cfg.Worker.Concurrency,
		StatusTTL:   cfg.Worker.StatusTTL,
	})

	stale, err := svc.FailStale(ctx, cfg.Worker.StaleAfter)
	if err != nil {
		return fmt.Errorf("fail stale jobs: %w", err)
	}
	if stale > 0 {
		slog.Warn("stale validation jobs marked failed", "count", stale)
	}

	// 5. Build router with dependencies
	deps := api.Dependencies{
		FrontendURL: cfg.Server.FrontendURL,

		HealthHandler:  healthHandler(jobStore, jobCache),
		MetricsHandler: telemetry.Handler(),

		SubmitHandler: handler.NewSubmitHandler(svc),
		ListHandler:   handler.NewListHandler(svc),
		GetHandler:    handler.NewGetHandler(svc),
		StatusHandler: handler.NewStatusHandler(svc),
	}
	if len(cfg.Auth.APIKeyHashes) > 0 {
		deps.Auth = mw.NewAuth(cfg.Auth.APIKeyHashes)
	}
	if jobCache != nil && cfg.Redis.RateLimitPerMinute > 0 {
		deps.RateLimit = mw.NewRateLimit(jobCache, cfg.Redis.RateLimitPerMinute)
	}

	router := api.NewRouter(deps)

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown: stop accepting requests, then let running jobs finish.
	// Jobs still running afterwards are failed by the next startup sweep.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := svc.Wait(shutdownCtx); err != nil {
		slog.Warn("validation jobs still running at shutdown", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openStore builds the configured job store and returns its close function.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Store.Backend != "postgres" {
		slog.Info("using in-memory job store")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	return store.NewPostgresStore(pool), pool.Close, nil
}

// healthHandler checks store and cache connectivity. A nil cache is reported
// as disabled and never degrades health.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"store": "ok",
			"cache": "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["store"] = "degraded"
		}
		if c == nil {
			checks["cache"] = "disabled"
		} else if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["store"] == "degraded" || checks["cache"] == "degraded"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
