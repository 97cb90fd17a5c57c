// Command server starts the PM interview coach HTTP server.
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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/automaxprocs/maxprocs"

	ai "github.com/fairyhunter13/pm-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/ai/real"
	httpserver "github.com/fairyhunter13/pm-interview-coach/internal/adapter/httpserver"
	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/pm-interview-coach/internal/app"
	"github.com/fairyhunter13/pm-interview-coach/internal/config"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/service/ratelimiter"
	"github.com/fairyhunter13/pm-interview-coach/internal/usecase"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Match GOMAXPROCS to the container CPU quota.
	if undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Warn("failed to set GOMAXPROCS", slog.Any("error", err))
	} else {
		defer undo()
	}

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Infra: DB pool
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	repo := postgres.NewEvaluationRepo(pool)

	if cfg.RetentionDays > 0 {
		cleanupSvc := postgres.NewCleanupService(pool, cfg.RetentionDays)
		go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
		slog.Info("cleanup service started", slog.Int("retention_days", cfg.RetentionDays), slog.Duration("interval", cfg.CleanupInterval))
	}

	// Redis backs the per-user daily quota. Without it quotas are not enforced.
	var rdb *redis.Client
	var quota domain.QuotaLimiter
	if opt, perr := redis.ParseURL(cfg.RedisURL); perr != nil {
		slog.Warn("invalid redis url, quota disabled", slog.Any("error", perr))
	} else {
		rdb = redis.NewClient(opt)
		defer func() { _ = rdb.Close() }()
		bucket := ratelimiter.NewBucketConfigFromPerDay(cfg.EvaluationsPerDay)
		if bucket.Enabled() {
			limiter := ratelimiter.NewQuotaLimiter(rdb, pool, bucket)
			limiter.ApplyOverrides(cfg.QuotaOverrides)
			if err := limiter.WarmFromStore(ctx); err != nil {
				slog.Warn("quota warm-up failed", slog.Any("error", err))
			}
			quota = limiter
		}
	}

	// Completion client; without a key every evaluation uses the heuristic scorer.
	var client domain.CompletionClient
	if cfg.CompletionEnabled() {
		rc := real.New(cfg)
		client = ai.NewCompletionCache(rc, rc.Model(), cfg.CompletionCacheSize)
		slog.Info("completion client initialized", slog.String("model", rc.Model()), slog.Int("cache_size", cfg.CompletionCacheSize))
	} else {
		slog.Warn("COMPLETION_API_KEY not set, serving heuristic feedback only")
	}

	analyzer := usecase.NewAnalyzer(client, usecase.WithStrictSections(cfg.StrictSections))
	evalSvc := usecase.NewEvaluationService(analyzer, repo, quota)

	dbCheck, redisCheck := app.BuildReadinessChecks(pool, app.WrapRedis(rdb))

	srv := httpserver.NewServer(cfg, evalSvc, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
