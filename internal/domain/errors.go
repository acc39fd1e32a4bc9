package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Ingestion errors
	ErrMsgUnknownSource         = "unknown event source"
	ErrMsgInvalidEvent          = "invalid event payload"
	ErrMsgUnsupportedEvent      = "unsupported event type"
	ErrMsgEventAlreadyProcessed = "event already processed"
	ErrMsgEventAlreadyApplied   = "event already applied to requirement"
	ErrMsgInvalidWebhookToken   = "invalid webhook token"

	// Board errors
	ErrMsgTeamNotFound  = "team not found"
	ErrMsgTileNotFound  = "tile not found"
	ErrMsgBoardNotFound = "board not found"

	// Requirement errors
	ErrMsgInvalidRequirement = "invalid requirement"
	ErrMsgProgressNotFound   = "progress not found"

	// Concurrency errors
	ErrMsgWriteConflict = "progress write conflict"

	// Ranking errors
	ErrMsgRankingUnavailable = "ranking service unavailable"
	ErrMsgPlayerNotFound     = "player not found"

	// Account errors
	ErrMsgAccountNotFound = "account not found"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Ingestion errors
	ErrUnknownSource         = errors.New(ErrMsgUnknownSource)
	ErrInvalidEvent          = errors.New(ErrMsgInvalidEvent)
	ErrUnsupportedEvent      = errors.New(ErrMsgUnsupportedEvent)
	ErrEventAlreadyProcessed = errors.New(ErrMsgEventAlreadyProcessed)
	ErrEventAlreadyApplied   = errors.New(ErrMsgEventAlreadyApplied)
	ErrInvalidWebhookToken   = errors.New(ErrMsgInvalidWebhookToken)

	// Board errors
	ErrTeamNotFound  = errors.New(ErrMsgTeamNotFound)
	ErrTileNotFound  = errors.New(ErrMsgTileNotFound)
	ErrBoardNotFound = errors.New(ErrMsgBoardNotFound)

	// Requirement errors
	ErrInvalidRequirement = errors.New(ErrMsgInvalidRequirement)
	ErrProgressNotFound   = errors.New(ErrMsgProgressNotFound)

	// Concurrency errors
	ErrWriteConflict = errors.New(ErrMsgWriteConflict)

	// Ranking errors
	ErrRankingUnavailable = errors.New(ErrMsgRankingUnavailable)
	ErrPlayerNotFound     = errors.New(ErrMsgPlayerNotFound)

	// Account errors
	ErrAccountNotFound = errors.New(ErrMsgAccountNotFound)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
