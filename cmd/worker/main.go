package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-journals/internal/app"
	jobmetrics "github.com/odyssey-erp/odyssey-journals/internal/jobs"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/cache"
	platformdb "github.com/odyssey-erp/odyssey-journals/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
	"github.com/odyssey-erp/odyssey-journals/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := platformdb.New(ctx, cfg.PGDSN, platformdb.Options{MaxConns: cfg.PGMaxConns, MaxConnIdleTime: cfg.PGMaxConnIdleTime})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.CacheOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), ledger.NewCache(redisClient, cfg.CacheTTL), logger)
	refreshJob := jobs.NewLedgerRefreshJob(ledgerService, logger, metrics)
	integrityJob := jobs.NewGLIntegrityJob(
		periods.NewService(periods.NewRepository(pool)),
		journals.NewRepository(pool),
		logger,
		metrics,
	)
	purgeJob := jobs.NewIdempotencyPurgeJob(internalShared.NewIdempotencyStore(pool), cfg.IdempotencyRetention, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.QueueRedis(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskGLIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskIdempotencyPurge, Handler: purgeJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.GLIntegrityCron, Task: jobs.NewGLIntegrityTask()},
			{Spec: cfg.IdempotencyPurgeCron, Task: jobs.NewIdempotencyPurgeTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
