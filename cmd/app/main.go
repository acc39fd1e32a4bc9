// Command app runs the bingo event ingestion service.
//
// @title BingoBot API
// @version 1.0
// @description Ingests game telemetry webhooks and tracks team progress on bingo tiles.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
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

	"go.opentelemetry.io/otel"

	_ "github.com/osse101/BingoBot_Go/docs"
	"github.com/osse101/BingoBot_Go/internal/account"
	"github.com/osse101/BingoBot_Go/internal/adapter"
	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/bootstrap"
	"github.com/osse101/BingoBot_Go/internal/concurrency"
	"github.com/osse101/BingoBot_Go/internal/config"
	"github.com/osse101/BingoBot_Go/internal/database"
	"github.com/osse101/BingoBot_Go/internal/eventlog"
	"github.com/osse101/BingoBot_Go/internal/handler"
	"github.com/osse101/BingoBot_Go/internal/progress"
	"github.com/osse101/BingoBot_Go/internal/ranking"
	"github.com/osse101/BingoBot_Go/internal/server"
	"github.com/osse101/BingoBot_Go/internal/worker"
)

// shutdownTimeout bounds the whole graceful shutdown sequence
const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Warn("Environment check failed", "error", err)
	}
	for _, warning := range warnings {
		slog.Warn("Environment check", "warning", warning)
	}

	ctx := context.Background()

	dbPool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, dbPool); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	repos := bootstrap.InitializeRepositories(dbPool)

	eventBus, resilientPublisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	eventlogService := eventlog.NewService(repos.EventLog)
	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:        eventBus,
		EventLogService: eventlogService,
		Config:          cfg,
	}); err != nil {
		return err
	}

	rankingClient := ranking.NewClient(ranking.Config{
		BaseURL:       cfg.RankingBaseURL,
		Timeout:       cfg.RankingTimeout,
		RatePerSecond: cfg.RankingRatePerSecond,
		UserAgent:     cfg.ServiceName + "/" + handler.Version,
	})

	adapters := adapter.Table{
		"dink": adapter.NewDinkAdapter(account.NewResolver(repos.Accounts)),
	}

	bingoService := bingo.NewService(bingo.Deps{
		Adapters:         adapters,
		Boards:           repos.Boards,
		Progress:         repos.Progress,
		Dedup:            repos.Dedup,
		Engine:           progress.NewEngine(rankingClient),
		Publisher:        resilientPublisher,
		Locks:            concurrency.NewLockManager(),
		Tracer:           otel.Tracer(bingo.TracerName),
		MaxWriteAttempts: cfg.MaxWriteAttempts,
	})

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()

	maintenance := worker.NewMaintenanceWorker(cfg.MaintenanceHourUTC,
		worker.NamedJob{Name: "eventlog_prune", Job: worker.NewPruneJob("event_log", eventlogService, time.Duration(cfg.EventLogRetentionDays)*24*time.Hour)},
		worker.NamedJob{Name: "dedup_prune", Job: worker.NewPruneJob("processed_events", repos.Dedup, worker.DefaultDedupRetention)},
	)
	maintenance.Start()

	srv := server.NewServer(server.Config{
		Port:              cfg.Port,
		APIKey:            cfg.APIKey,
		WebhookToken:      cfg.WebhookToken,
		TrustedProxies:    cfg.TrustedProxies,
		RequestsPerSecond: cfg.RateLimitPerSecond,
		RequestBurst:      cfg.RateLimitBurst,
		Jobs:              bingo.JobConfig{DeadLetter: resilientPublisher},
	}, dbPool, bingoService, eventlogService, pool, adapters.Sources())

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Port, "sources", adapters.Sources())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		WorkerPool:         pool,
		MaintenanceWorker:  maintenance,
		BingoService:       bingoService,
		ResilientPublisher: resilientPublisher,
	})

	return runErr
}
