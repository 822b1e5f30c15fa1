package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-journals/internal/app"
	"github.com/odyssey-erp/odyssey-journals/internal/observability"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/cache"
	platformdb "github.com/odyssey-erp/odyssey-journals/internal/platform/db"
	"github.com/odyssey-erp/odyssey-journals/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if cfg.AutoMigrate {
		if err := platformdb.Migrate(cfg.PGDSN, cfg.MigrationsSource, 0, logger); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := platformdb.New(ctx, cfg.PGDSN, platformdb.Options{MaxConns: cfg.PGMaxConns, MaxConnIdleTime: cfg.PGMaxConnIdleTime})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	metrics := observability.NewMetrics()
	redisOpts := cfg.QueueRedis()

	periodService := periods.NewService(periods.NewRepository(dbpool))
	accountService := accounts.NewService(accounts.NewRepository(dbpool))
	ledgerService := ledger.NewService(ledger.NewRepository(dbpool), ledger.NewCache(redisClient, cfg.CacheTTL), logger)

	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewLedgerNotifier(jobClient, ledgerService, logger)
	journalService := journals.NewService(journals.NewRepository(dbpool), notifier, metrics, logger)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		JournalsHandler: journals.NewHandler(logger, journalService),
		PeriodsHandler:  periods.NewHandler(logger, periodService),
		LedgerHandler:   ledger.NewHandler(logger, ledgerService),
		AccountsHandler: accounts.NewHandler(logger, accountService),
		JobHandler:      jobs.NewHandler(inspector, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
