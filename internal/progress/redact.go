package progress

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// PublicView returns a copy of meta safe to show participants. Puzzle metadata
// keeps only its display fields and the solved state.
func PublicView(meta domain.ProgressMetadata) domain.ProgressMetadata {
	if meta == nil {
		return nil
	}
	puzzle, ok := meta.(*domain.PuzzleProgress)
	if !ok {
		return meta.Clone()
	}

	out := &domain.PuzzleProgress{
		ProgressBase: domain.ProgressBase{
			RequirementType:     domain.RequirementPuzzle,
			TargetValue:         1,
			LastUpdateAt:        puzzle.LastUpdateAt,
			PlayerContributions: []domain.PlayerContribution{},
		},
		DisplayName: puzzle.DisplayName,
		Hint:        puzzle.Hint,
		IsSolved:    puzzle.IsSolved,
	}
	if puzzle.SolvedAt != nil {
		solvedAt := *puzzle.SolvedAt
		out.SolvedAt = &solvedAt
	}
	return out
}

// PublicTileProgress redacts a stored row for participants. A puzzle's value
// becomes 0 or 1 and its key is replaced by an opaque digest, since both would
// otherwise reveal the hidden requirement.
func PublicTileProgress(p domain.TileProgress) domain.TileProgress {
	out := p
	out.ProgressMetadata = PublicView(p.ProgressMetadata)
	if _, ok := p.ProgressMetadata.(*domain.PuzzleProgress); !ok {
		return out
	}

	out.ProgressValue = 0
	if p.IsCompleted {
		out.ProgressValue = 1
	}
	sum := sha256.Sum256([]byte(p.RequirementKey))
	out.RequirementKey = string(domain.RequirementPuzzle) + ":" + hex.EncodeToString(sum[:6])
	return out
}
