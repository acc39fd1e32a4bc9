package repository

import "context"

// EventDedupRepository remembers which game events have been processed
type EventDedupRepository interface {
	// ClaimEvent marks eventID as being processed. It returns
	// domain.ErrEventAlreadyProcessed if the id was already claimed.
	ClaimEvent(ctx context.Context, eventID, source string) error

	// ReleaseEvent removes a claim so a failed event can be retried. Rows the
	// event already reached keep their applied marker, see ProgressStore.
	ReleaseEvent(ctx context.Context, eventID string) error
}
