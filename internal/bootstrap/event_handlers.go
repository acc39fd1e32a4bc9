package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/BingoBot_Go/internal/config"
	"github.com/osse101/BingoBot_Go/internal/discord"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/eventlog"
	"github.com/osse101/BingoBot_Go/internal/metrics"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus        event.Bus
	EventLogService eventlog.Service
	Config          *config.Config
}

// RegisterEventHandlers subscribes the completion event consumers:
// - Discord notifier (only when a webhook URL is configured)
// - Metrics collector
// - Event logger (persists completions for the admin API)
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	if deps.Config.DiscordWebhookURL != "" {
		notifier, err := discord.NewNotifier(deps.Config.DiscordWebhookURL)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedCreateNotifier, err)
		}
		notifier.Subscribe(deps.EventBus)
		slog.Info(LogMsgDiscordNotifierInitialized)
	} else {
		slog.Info(LogMsgDiscordNotifierDisabled)
	}

	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	if err := deps.EventLogService.Subscribe(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSubscribeEventLogger, err)
	}
	slog.Info(LogMsgEventLoggerInitialized)

	return nil
}
