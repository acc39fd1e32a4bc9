package progress

import (
	"context"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// CalculatePuzzle runs the calculator of the hidden requirement and wraps its
// result. The value passes through unchanged; only metadata is redacted later.
func (e *Engine) CalculatePuzzle(ctx context.Context, ev domain.UnifiedGameEvent, req domain.PuzzleRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.PuzzleProgress {
		return &domain.PuzzleProgress{}
	})
	meta.RequirementType = domain.RequirementPuzzle
	meta.TargetValue = 1
	meta.DisplayName = req.DisplayName
	meta.Hint = req.Hint
	if meta.PlayerContributions == nil {
		meta.PlayerContributions = []domain.PlayerContribution{}
	}
	if ev.Timestamp.After(meta.LastUpdateAt) {
		meta.LastUpdateAt = ev.Timestamp
	}

	if !solvable(req.HiddenRequirement) {
		// A malformed puzzle never completes but must not break processing
		meta.HiddenRequirementType = ""
		meta.HiddenProgressMetadata = nil
		return domain.ProgressResult{ProgressMetadata: meta, IsCompleted: existingCompleted(existing)}
	}

	var hiddenExisting *domain.ExistingProgress
	if meta.HiddenProgressMetadata != nil && meta.HiddenProgressMetadata.Type() == req.HiddenRequirement.Type() {
		hiddenExisting = &domain.ExistingProgress{
			ProgressValue:    existingValue(existing),
			ProgressMetadata: meta.HiddenProgressMetadata,
			IsCompleted:      meta.IsSolved,
		}
	}

	inner := e.CalculateProgress(ctx, ev, req.HiddenRequirement, hiddenExisting, pctx)

	meta.HiddenRequirementType = req.HiddenRequirement.Type()
	meta.HiddenProgressMetadata = inner.ProgressMetadata
	if inner.IsCompleted && !meta.IsSolved {
		meta.IsSolved = true
		solvedAt := ev.Timestamp
		meta.SolvedAt = &solvedAt
	}

	return domain.ProgressResult{
		ProgressValue:    inner.ProgressValue,
		ProgressMetadata: meta,
		IsCompleted:      meta.IsSolved,
		CompletedTiers:   inner.CompletedTiers,
	}
}

// solvable reports whether a hidden requirement has a calculator. Puzzles
// cannot hide puzzles.
func solvable(hidden domain.Requirement) bool {
	switch hidden.(type) {
	case domain.ItemDropRequirement, domain.PetRequirement, domain.ValueDropRequirement,
		domain.SpeedrunRequirement, domain.ExperienceRequirement, domain.BAGamblesRequirement,
		domain.ChatRequirement:
		return true
	default:
		return false
	}
}
