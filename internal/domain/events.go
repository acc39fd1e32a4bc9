package domain

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "tile.completed")
const (
	// EventTypeGameEventProcessed is published after a unified game event has been applied to every matching tile
	EventTypeGameEventProcessed = "game_event.processed"

	// EventTypeGameEventFailed records a queued game event that could not be applied after every retry
	EventTypeGameEventFailed = "game_event.failed"

	// EventTypeRequirementCompleted is published when a requirement transitions to completed
	EventTypeRequirementCompleted = "requirement.completed"

	// EventTypeTierCompleted is published when a requirement reaches a new tier
	EventTypeTierCompleted = "requirement.tier_completed"

	// EventTypeTileCompleted is published once per team when a tile's completion rule is satisfied
	EventTypeTileCompleted = "tile.completed"
)
