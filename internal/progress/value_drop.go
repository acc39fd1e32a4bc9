package progress

import (
	"fmt"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// calculateValueDrop accumulates the gp value of every loot event
func calculateValueDrop(ev domain.UnifiedGameEvent, req domain.ValueDropRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.ValueDropProgress {
		return &domain.ValueDropProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)

	if loot, ok := ev.Data.(domain.LootData); ok && loot.TotalValue > 0 {
		detail := fmt.Sprintf("%d gp", loot.TotalValue)
		if loot.Source != "" {
			detail += " from " + loot.Source
		}
		addContribution(&meta.ProgressBase, pctx, ev.Timestamp, loot.TotalValue, detail)
		meta.CurrentBestValue = max(meta.CurrentBestValue, loot.TotalValue)
	}

	meta.CurrentTotalValue = sumContributions(&meta.ProgressBase)
	value := max(existingValue(existing), meta.CurrentTotalValue)

	return finish(meta, req, value, value >= req.Value, existing)
}
