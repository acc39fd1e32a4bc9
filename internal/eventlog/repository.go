package eventlog

import (
	"context"
	"time"
)

// Event is a persisted completion event. TeamID and TileID are lifted out of
// the payload so the admin feed can filter on them.
type Event struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	TeamID    *int64                 `json:"team_id,omitempty"`
	TileID    *int64                 `json:"tile_id,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventFilter narrows a feed query. Nil fields do not filter.
type EventFilter struct {
	TeamID    *int64
	TileID    *int64
	EventType *string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// Repository stores the completion feed
type Repository interface {
	Append(ctx context.Context, entry Event) error
	// Query returns matching events, newest first
	Query(ctx context.Context, filter EventFilter) ([]Event, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
