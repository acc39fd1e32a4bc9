package progress

import "github.com/osse101/BingoBot_Go/internal/domain"

// calculatePet counts one per matching pet drop
func calculatePet(ev domain.UnifiedGameEvent, req domain.PetRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.PetProgress {
		return &domain.PetProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)

	if pet, ok := ev.Data.(domain.PetData); ok {
		addContribution(&meta.ProgressBase, pctx, ev.Timestamp, 1, pet.PetName)
	}

	meta.CurrentTotalCount = sumContributions(&meta.ProgressBase)
	value := max(existingValue(existing), meta.CurrentTotalCount)

	return finish(meta, req, value, value >= req.Amount, existing)
}
