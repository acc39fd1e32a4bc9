package metrics

import (
	"context"

	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// EventMetricsCollector subscribes to completion events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.GameEventProcessed,
		event.RequirementCompleted,
		event.TierCompleted,
		event.TileCompleted,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.RequirementCompleted:
		payload, err := event.DecodePayload[event.RequirementCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
			return nil
		}
		RequirementCompletions.WithLabelValues(string(payload.RequirementType)).Inc()

	case event.TierCompleted:
		payload, err := event.DecodePayload[event.TierCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
			return nil
		}
		TierCompletions.WithLabelValues(string(payload.RequirementType)).Inc()

	case event.TileCompleted:
		TileCompletions.Inc()

	case event.GameEventProcessed:
		payload, err := event.DecodePayload[event.GameEventProcessedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
			return nil
		}
		GameEventsIngested.WithLabelValues(payload.Source, string(payload.EventType)).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
