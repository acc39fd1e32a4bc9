package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger to listen to completion events
	Subscribe(bus event.Bus) error

	// Recent returns logged events matching filter
	Recent(ctx context.Context, filter EventFilter) ([]Event, error)

	// PruneBefore drops events logged before cutoff
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new event logging service
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// LoggedEventTypes are the bus events persisted for audit
var LoggedEventTypes = []event.Type{
	event.RequirementCompleted,
	event.TierCompleted,
	event.TileCompleted,
}

// Subscribe registers event handlers for all logged event types
func (s *service) Subscribe(bus event.Bus) error {
	for _, eventType := range LoggedEventTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
	return nil
}

// handleEvent stores one event. Typed payloads are flattened to a JSON object.
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := event.DecodePayload[map[string]interface{}](evt.Payload)
	if err != nil {
		log.Debug(LogMsgEventPayloadUndecodable, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	entry := Event{
		ID:        uuid.NewString(),
		EventType: string(evt.Type),
		TeamID:    numberField(payload, PayloadKeyTeamID),
		TileID:    numberField(payload, PayloadKeyTileID),
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldTeamID, entry.TeamID, LogFieldTileID, entry.TileID)
	return nil
}

// numberField reads an id from a JSON-decoded payload, where numbers are float64
func numberField(payload map[string]interface{}, key string) *int64 {
	switch v := payload[key].(type) {
	case float64:
		id := int64(v)
		return &id
	case int64:
		return &v
	}
	return nil
}

// Recent returns logged events matching filter, clamping the limit
func (s *service) Recent(ctx context.Context, filter EventFilter) ([]Event, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultQueryLimit
	}
	if filter.Limit > MaxQueryLimit {
		filter.Limit = MaxQueryLimit
	}
	return s.repo.Query(ctx, filter)
}

// PruneBefore implements worker.Pruner for the nightly retention run
func (s *service) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.PruneBefore(ctx, cutoff)
}
