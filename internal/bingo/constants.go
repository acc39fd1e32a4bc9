package bingo

import "time"

// TracerName names the tracer used for event processing spans
const TracerName = "github.com/osse101/BingoBot_Go/internal/bingo"

// Write retry configuration
const (
	DefaultMaxWriteAttempts = 5
	DefaultWriteRetryDelay  = 10 * time.Millisecond
)

// DefaultProcessTimeout bounds one attempt at an event on the worker pool
const DefaultProcessTimeout = 30 * time.Second

// Queued event retry configuration
const (
	DefaultProcessAttempts   = 4
	DefaultProcessRetryDelay = 500 * time.Millisecond
)

// Log messages
const (
	LogMsgEventDuplicate        = "Game event already processed"
	LogMsgEventNoTeam           = "Game event player has no team on an active board"
	LogMsgEventIrrelevant       = "Game event has no bingo relevance"
	LogMsgEventProcessed        = "Game event processed"
	LogMsgEventFailed           = "Game event processing failed"
	LogMsgClaimReleaseFailed    = "Failed to release event claim"
	LogMsgEventAlreadyApplied   = "Event already applied to requirement, skipping"
	LogMsgProcessRetry          = "Queued game event failed, retrying"
	LogMsgProcessDeadLettered   = "Queued game event dead-lettered"
	LogMsgWriteConflict         = "Progress write conflict, retrying"
	LogMsgRequirementCompleted  = "Requirement completed"
	LogMsgTierCompleted         = "Requirement tier completed"
	LogMsgTileCompleted         = "Tile completed"
	LogMsgUnknownRequirement    = "Tile has a requirement of unknown type"
	LogMsgShuttingDown          = "Shutting down bingo service"
	LogMsgShutdownComplete      = "Bingo service shutdown complete"
	LogMsgProcessJobFailed      = "Queued game event failed"
	LogMsgProgressUnchangedSkip = "Progress unchanged, skipping write"
)

// Span attribute keys
const (
	AttrEventID        = "bingo.event_id"
	AttrEventType      = "bingo.event_type"
	AttrSource         = "bingo.source"
	AttrTeamID         = "bingo.team_id"
	AttrTileID         = "bingo.tile_id"
	AttrRequirementKey = "bingo.requirement_key"
	AttrAttempt        = "bingo.attempt"
)
