package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// ProgressStore implements repository.ProgressStore
type ProgressStore struct {
	db *pgxpool.Pool
}

// NewProgressStore creates a new ProgressStore
func NewProgressStore(db *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{db: db}
}

const progressColumns = `team_id, tile_id, requirement_key, progress_value, progress_metadata,
	is_completed, completed_at, version, updated_at`

func scanProgress(row pgx.Row) (*domain.TileProgress, error) {
	var p domain.TileProgress
	var metadata []byte
	if err := row.Scan(&p.TeamID, &p.TileID, &p.RequirementKey, &p.ProgressValue, &metadata,
		&p.IsCompleted, &p.CompletedAt, &p.Version, &p.UpdatedAt); err != nil {
		return nil, err
	}
	meta, err := domain.UnmarshalProgressMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("requirement %s: %w", p.RequirementKey, err)
	}
	p.ProgressMetadata = meta
	return &p, nil
}

// Read returns the stored row or nil when none exists
func (s *ProgressStore) Read(ctx context.Context, teamID, tileID int64, requirementKey string) (*domain.TileProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM tile_progress
		WHERE team_id = $1 AND tile_id = $2 AND requirement_key = $3`

	p, err := scanProgress(s.db.QueryRow(ctx, query, teamID, tileID, requirementKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return p, nil
}

func marshalMetadata(meta domain.ProgressMetadata) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	return json.Marshal(meta)
}

// WriteIfUnchanged inserts when expectedVersion is 0 and otherwise updates
// only if the stored version still matches. A non-empty eventID is recorded
// against the row in the same transaction; an id already recorded there fails
// with ErrEventAlreadyApplied and leaves the row untouched.
func (s *ProgressStore) WriteIfUnchanged(ctx context.Context, row domain.TileProgress, expectedVersion int64, eventID string) (int64, error) {
	metadata, err := marshalMetadata(row.ProgressMetadata)
	if err != nil {
		return 0, fmt.Errorf("failed to encode progress metadata: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin progress write: %w", err)
	}
	defer rollbackUnlessCommitted(ctx, tx)

	version, err := writeProgressRow(ctx, tx, row, metadata, expectedVersion)
	if err != nil {
		return 0, err
	}

	if eventID != "" {
		tag, err := tx.Exec(ctx, `
			INSERT INTO applied_events (event_id, team_id, tile_id, requirement_key)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING`,
			eventID, row.TeamID, row.TileID, row.RequirementKey)
		if err != nil {
			return 0, fmt.Errorf("failed to record applied event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, domain.ErrEventAlreadyApplied
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit progress write: %w", err)
	}
	return version, nil
}

func writeProgressRow(ctx context.Context, tx pgx.Tx, row domain.TileProgress, metadata []byte, expectedVersion int64) (int64, error) {
	if expectedVersion == 0 {
		tag, err := tx.Exec(ctx, `
			INSERT INTO tile_progress (team_id, tile_id, requirement_key, progress_value,
				progress_metadata, is_completed, completed_at, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, NOW())
			ON CONFLICT (team_id, tile_id, requirement_key) DO NOTHING`,
			row.TeamID, row.TileID, row.RequirementKey, row.ProgressValue,
			metadata, row.IsCompleted, row.CompletedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert progress: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, domain.ErrWriteConflict
		}
		return 1, nil
	}

	// completed_at keeps its first value once set
	var version int64
	err := tx.QueryRow(ctx, `
		UPDATE tile_progress
		SET progress_value = $4,
			progress_metadata = $5,
			is_completed = $6,
			completed_at = COALESCE(completed_at, $7),
			version = version + 1,
			updated_at = NOW()
		WHERE team_id = $1 AND tile_id = $2 AND requirement_key = $3 AND version = $8
		RETURNING version`,
		row.TeamID, row.TileID, row.RequirementKey, row.ProgressValue,
		metadata, row.IsCompleted, row.CompletedAt, expectedVersion).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrWriteConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update progress: %w", err)
	}
	return version, nil
}

// ListTileProgress returns all requirement rows for a team's tile
func (s *ProgressStore) ListTileProgress(ctx context.Context, teamID, tileID int64) ([]domain.TileProgress, error) {
	rows, err := s.db.Query(ctx, `SELECT `+progressColumns+` FROM tile_progress
		WHERE team_id = $1 AND tile_id = $2 ORDER BY requirement_key`, teamID, tileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var out []domain.TileProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// MarkTileCompleted inserts the completion if absent
func (s *ProgressStore) MarkTileCompleted(ctx context.Context, completion domain.TileCompletion) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO tile_completions (team_id, tile_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, tile_id) DO NOTHING`,
		completion.TeamID, completion.TileID, completion.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark tile completed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
