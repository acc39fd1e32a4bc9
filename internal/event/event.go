package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// SourceEventID returns the id of the game event that produced e, or "" when
// the payload carries none
func (e Event) SourceEventID() string {
	switch p := e.Payload.(type) {
	case RequirementCompletedPayloadV1:
		return p.EventID
	case TierCompletedPayloadV1:
		return p.EventID
	case TileCompletedPayloadV1:
		return p.EventID
	case GameEventProcessedPayloadV1:
		return p.EventID
	case GameEventFailedPayloadV1:
		return p.Event.EventID
	case map[string]interface{}:
		id, _ := p["event_id"].(string)
		if nested, ok := p["event"].(map[string]interface{}); ok && id == "" {
			id, _ = nested["event_id"].(string)
		}
		return id
	}
	return ""
}

// DecodePayload returns the payload as T. Payloads published in process are
// already typed; payloads read back from JSON arrive as maps and are converted.
func DecodePayload[T any](payload interface{}) (T, error) {
	if typed, ok := payload.(T); ok {
		return typed, nil
	}
	var out T
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("encode %T payload: %w", payload, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode payload as %T: %w", out, err)
	}
	return out, nil
}

// Bingo event types
const (
	GameEventProcessed   Type = domain.EventTypeGameEventProcessed
	GameEventFailed      Type = domain.EventTypeGameEventFailed
	RequirementCompleted Type = domain.EventTypeRequirementCompleted
	TierCompleted        Type = domain.EventTypeTierCompleted
	TileCompleted        Type = domain.EventTypeTileCompleted
)

// RequirementCompletedPayloadV1 is the typed payload for requirement completion events.
// For puzzles RequirementType is PUZZLE and only DisplayName describes the objective.
type RequirementCompletedPayloadV1 struct {
	EventID         string                 `json:"event_id"`
	TeamID          int64                  `json:"team_id"`
	BoardID         int64                  `json:"board_id"`
	TileID          int64                  `json:"tile_id"`
	TileName        string                 `json:"tile_name"`
	RequirementKey  string                 `json:"requirement_key"`
	RequirementType domain.RequirementType `json:"requirement_type"`
	DisplayName     string                 `json:"display_name,omitempty"`
	PlayerName      string                 `json:"player_name"`
	AccountID       string                 `json:"account_id,omitempty"`
	ProgressValue   int64                  `json:"progress_value"`
	TargetValue     int64                  `json:"target_value"`
	CompletedAt     time.Time              `json:"completed_at"`
}

// TierCompletedPayloadV1 is the typed payload for tier completion events
type TierCompletedPayloadV1 struct {
	EventID         string                 `json:"event_id"`
	TeamID          int64                  `json:"team_id"`
	TileID          int64                  `json:"tile_id"`
	TileName        string                 `json:"tile_name"`
	RequirementKey  string                 `json:"requirement_key"`
	RequirementType domain.RequirementType `json:"requirement_type"`
	Tier            int                    `json:"tier"`
	PlayerName      string                 `json:"player_name"`
	CompletedAt     time.Time              `json:"completed_at"`
}

// TileCompletedPayloadV1 is the typed payload for tile completion events
type TileCompletedPayloadV1 struct {
	EventID     string    `json:"event_id"`
	TeamID      int64     `json:"team_id"`
	BoardID     int64     `json:"board_id"`
	TileID      int64     `json:"tile_id"`
	TileName    string    `json:"tile_name"`
	PlayerName  string    `json:"player_name"`
	CompletedAt time.Time `json:"completed_at"`
}

// GameEventProcessedPayloadV1 summarizes one processed game event
type GameEventProcessedPayloadV1 struct {
	EventID      string               `json:"event_id"`
	EventType    domain.GameEventType `json:"event_type"`
	Source       string               `json:"source"`
	PlayerName   string               `json:"player_name"`
	TeamID       int64                `json:"team_id"`
	Requirements int                  `json:"requirements"`
	Completions  int                  `json:"completions"`
}

// GameEventFailedPayloadV1 carries a game event whose processing gave up, in
// full so an operator can replay it
type GameEventFailedPayloadV1 struct {
	Event domain.UnifiedGameEvent `json:"event"`
}

// NewRequirementCompletedEvent creates a requirement completion event
func NewRequirementCompletedEvent(payload RequirementCompletedPayloadV1) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     RequirementCompleted,
		Payload:  payload,
		Metadata: map[string]interface{}{"team_id": payload.TeamID, "tile_id": payload.TileID},
	}
}

// NewTierCompletedEvent creates a tier completion event
func NewTierCompletedEvent(payload TierCompletedPayloadV1) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     TierCompleted,
		Payload:  payload,
		Metadata: map[string]interface{}{"team_id": payload.TeamID, "tile_id": payload.TileID},
	}
}

// NewTileCompletedEvent creates a tile completion event
func NewTileCompletedEvent(payload TileCompletedPayloadV1) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     TileCompleted,
		Payload:  payload,
		Metadata: map[string]interface{}{"team_id": payload.TeamID, "tile_id": payload.TileID},
	}
}

// NewGameEventProcessedEvent creates a processing summary event
func NewGameEventProcessedEvent(payload GameEventProcessedPayloadV1) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GameEventProcessed,
		Payload: payload,
	}
}

// NewGameEventFailedEvent wraps a game event that could not be applied
func NewGameEventFailedEvent(ev domain.UnifiedGameEvent) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     GameEventFailed,
		Payload:  GameEventFailedPayloadV1{Event: ev},
		Metadata: map[string]interface{}{"event_id": ev.EventID, "source": ev.Source},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously
// and every handler runs even if an earlier one fails.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
