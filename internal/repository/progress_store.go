package repository

import (
	"context"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// ProgressStore persists one progress row per (team, tile, requirement key).
// Writes are compare-and-set on the row version.
type ProgressStore interface {
	// Read returns the stored row, or nil with a nil error when none exists
	Read(ctx context.Context, teamID, tileID int64, requirementKey string) (*domain.TileProgress, error)

	// WriteIfUnchanged stores row when the stored version still equals
	// expectedVersion (0 meaning "no row yet") and returns the new version.
	// A lost race returns domain.ErrWriteConflict. A non-empty eventID is
	// recorded atomically with the row; writing the same event to the same
	// row twice returns domain.ErrEventAlreadyApplied.
	WriteIfUnchanged(ctx context.Context, row domain.TileProgress, expectedVersion int64, eventID string) (int64, error)

	// ListTileProgress returns every stored requirement row of a team's tile
	ListTileProgress(ctx context.Context, teamID, tileID int64) ([]domain.TileProgress, error)

	// MarkTileCompleted records tile completion once; it reports whether this call inserted it
	MarkTileCompleted(ctx context.Context, completion domain.TileCompletion) (bool, error)
}
