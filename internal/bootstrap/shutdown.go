package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/server"
	"github.com/osse101/BingoBot_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	WorkerPool         *worker.Pool
	MaintenanceWorker  *worker.MaintenanceWorker
	BingoService       bingo.Service
	ResilientPublisher *event.ResilientPublisher
}

// GracefulShutdown stops the application in dependency order:
// 1. HTTP server (stop accepting webhooks)
// 2. Worker pool (finish queued events)
// 3. Maintenance worker and bingo service (wait for in-flight work)
// 4. Event publisher (flush pending completion events)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)
	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	if components.WorkerPool != nil {
		slog.Info(LogMsgDrainingWorkerPool, "queued", components.WorkerPool.QueueLength())
		components.WorkerPool.Stop()
	}

	if components.MaintenanceWorker != nil {
		if err := components.MaintenanceWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgMaintenanceShutdownFailed, "error", err)
		}
	}

	if components.BingoService != nil {
		if err := components.BingoService.Shutdown(ctx); err != nil {
			slog.Error(LogMsgBingoShutdownFailed, "error", err)
		}
	}

	slog.Info(LogMsgShuttingDownEventPublisher)
	if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
		slog.Error(LogMsgResilientPublisherFailed, "error", err)
	}

	slog.Info(LogMsgServerStopped)
}
