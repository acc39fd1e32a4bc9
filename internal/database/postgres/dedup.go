package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// EventDedupRepository implements repository.EventDedupRepository
type EventDedupRepository struct {
	db *pgxpool.Pool
}

// NewEventDedupRepository creates a new EventDedupRepository
func NewEventDedupRepository(db *pgxpool.Pool) *EventDedupRepository {
	return &EventDedupRepository{db: db}
}

// ClaimEvent records eventID, failing with ErrEventAlreadyProcessed on a repeat
func (r *EventDedupRepository) ClaimEvent(ctx context.Context, eventID, source string) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO processed_events (event_id, source) VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING`, eventID, source)
	if err != nil {
		return fmt.Errorf("failed to claim event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventAlreadyProcessed
	}
	return nil
}

// ReleaseEvent forgets a claim
func (r *EventDedupRepository) ReleaseEvent(ctx context.Context, eventID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM processed_events WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to release event: %w", err)
	}
	return nil
}

// PruneBefore deletes claims and per-requirement applied markers older than
// cutoff; redelivery past that age is not expected
func (r *EventDedupRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	claims, err := r.db.Exec(ctx, `DELETE FROM processed_events WHERE processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune processed events: %w", err)
	}
	applied, err := r.db.Exec(ctx, `DELETE FROM applied_events WHERE applied_at < $1`, cutoff)
	if err != nil {
		return claims.RowsAffected(), fmt.Errorf("failed to prune applied events: %w", err)
	}
	return claims.RowsAffected() + applied.RowsAffected(), nil
}
