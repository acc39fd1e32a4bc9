package progress

import "github.com/osse101/BingoBot_Go/internal/domain"

func calculateBAGambles(ev domain.UnifiedGameEvent, req domain.BAGamblesRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.BAGamblesProgress {
		return &domain.BAGamblesProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)

	if gamble, ok := ev.Data.(domain.GambleData); ok {
		count := gamble.GambleCount
		if count <= 0 {
			count = 1
		}
		addContribution(&meta.ProgressBase, pctx, ev.Timestamp, count, "")
	}

	meta.CurrentTotalGambles = sumContributions(&meta.ProgressBase)
	value := max(existingValue(existing), meta.CurrentTotalGambles)

	return finish(meta, req, value, value >= req.Amount, existing)
}
