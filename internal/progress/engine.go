package progress

import (
	"context"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// ExperienceSource resolves skill experience for a player. It is the only
// external dependency of the calculators.
type ExperienceSource interface {
	CurrentExperience(ctx context.Context, playerName, skill string) (int64, error)
	ExperienceAtOrBefore(ctx context.Context, playerName, skill string, at time.Time) (xp int64, found bool, err error)
}

// Engine dispatches progress calculation to the calculator for a requirement's kind.
// Every calculator derives a fresh result from (event, requirement, existing) and never
// mutates its inputs, so retrying against fresher state is always safe.
type Engine struct {
	xp ExperienceSource
}

// NewEngine creates a calculation engine
func NewEngine(xp ExperienceSource) *Engine {
	return &Engine{xp: xp}
}

// CalculateProgress computes the new progress of req after ev. It never fails:
// unknown kinds yield an inert placeholder and lookup failures keep existing progress.
func (e *Engine) CalculateProgress(ctx context.Context, ev domain.UnifiedGameEvent, req domain.Requirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	switch r := req.(type) {
	case domain.ItemDropRequirement:
		return calculateItemDrop(ev, r, existing, pctx)
	case domain.PetRequirement:
		return calculatePet(ev, r, existing, pctx)
	case domain.ValueDropRequirement:
		return calculateValueDrop(ev, r, existing, pctx)
	case domain.SpeedrunRequirement:
		return calculateSpeedrun(ev, r, existing, pctx)
	case domain.ExperienceRequirement:
		return e.calculateExperience(ctx, ev, r, existing, pctx)
	case domain.BAGamblesRequirement:
		return calculateBAGambles(ev, r, existing, pctx)
	case domain.ChatRequirement:
		return calculateChat(ev, r, existing, pctx)
	case domain.PuzzleRequirement:
		return e.CalculatePuzzle(ctx, ev, r, existing, pctx)
	default:
		return inertResult(req, existing)
	}
}

// inertResult keeps whatever was stored, or starts a zero placeholder
func inertResult(req domain.Requirement, existing *domain.ExistingProgress) domain.ProgressResult {
	if existing != nil && existing.ProgressMetadata != nil {
		return unchanged(existing)
	}
	var kind domain.RequirementType
	if req != nil {
		kind = req.Type()
	}
	return domain.ProgressResult{
		ProgressMetadata: &domain.InertProgress{ProgressBase: domain.ProgressBase{
			RequirementType:     kind,
			PlayerContributions: []domain.PlayerContribution{},
		}},
	}
}

// unchanged re-emits the stored state as a fresh result
func unchanged(existing *domain.ExistingProgress) domain.ProgressResult {
	meta := existing.ProgressMetadata.Clone()
	var tiers []int
	if base := meta.Base(); len(base.CompletedTiers) > 0 {
		tiers = append([]int(nil), base.CompletedTiers...)
	}
	return domain.ProgressResult{
		ProgressValue:    existing.ProgressValue,
		ProgressMetadata: meta,
		IsCompleted:      existing.IsCompleted,
		CompletedTiers:   tiers,
	}
}

// resume clones the stored metadata when it has the expected shape, otherwise starts fresh
func resume[T domain.ProgressMetadata](existing *domain.ExistingProgress, fresh func() T) T {
	if existing != nil && existing.ProgressMetadata != nil {
		if meta, ok := existing.ProgressMetadata.Clone().(T); ok {
			return meta
		}
	}
	return fresh()
}

func newBase(req domain.Requirement) domain.ProgressBase {
	return domain.ProgressBase{
		RequirementType:     req.Type(),
		TargetValue:         req.TargetValue(),
		PlayerContributions: []domain.PlayerContribution{},
	}
}

// touch refreshes the fields every calculation rewrites
func touch(base *domain.ProgressBase, req domain.Requirement, ev domain.UnifiedGameEvent) {
	base.RequirementType = req.Type()
	base.TargetValue = req.TargetValue()
	if ev.Timestamp.After(base.LastUpdateAt) {
		base.LastUpdateAt = ev.Timestamp
	}
	if base.PlayerContributions == nil {
		base.PlayerContributions = []domain.PlayerContribution{}
	}
}

func existingValue(existing *domain.ExistingProgress) int64 {
	if existing == nil {
		return 0
	}
	return existing.ProgressValue
}

func existingCompleted(existing *domain.ExistingProgress) bool {
	return existing != nil && existing.IsCompleted
}

// finish applies tier evaluation and the completion latch shared by every kind
func finish(meta domain.ProgressMetadata, req domain.Requirement, value int64, reached bool, existing *domain.ExistingProgress) domain.ProgressResult {
	base := meta.Base()
	base.CompletedTiers, base.CurrentTier = evaluateTiers(req, value, base.CompletedTiers)

	var tiers []int
	if len(base.CompletedTiers) > 0 {
		tiers = append([]int(nil), base.CompletedTiers...)
	}
	return domain.ProgressResult{
		ProgressValue:    value,
		ProgressMetadata: meta,
		IsCompleted:      reached || existingCompleted(existing),
		CompletedTiers:   tiers,
	}
}
