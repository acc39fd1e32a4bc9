package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osse101/BingoBot_Go/internal/config"
	"github.com/osse101/BingoBot_Go/internal/event"
)

// InitializeEventSystem returns the in-process bus and the publisher the bingo
// service sends completions through. Completions that cannot be delivered end
// up in cfg.DeadLetterPath.
func InitializeEventSystem(cfg *config.Config) (event.Bus, *event.ResilientPublisher, error) {
	path := cfg.DeadLetterPath
	if path == "" {
		path = config.DefaultDeadLetterPath
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPermission); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetterDir, err)
	}

	bus := event.NewMemoryBus()
	publisher, err := event.NewResilientPublisher(bus, event.RetryMaxAttempts, event.RetryInitialDelay, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateResilientPublisher, err)
	}

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", event.RetryMaxAttempts,
		"retry_delay", event.RetryInitialDelay,
		"deadletter_path", path)
	return bus, publisher, nil
}
