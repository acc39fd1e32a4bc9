package progress

import "github.com/osse101/BingoBot_Go/internal/domain"

// calculateChat counts one per matching message and keeps the raw text in history.
// Source and pattern matching happen before the calculator is invoked.
func calculateChat(ev domain.UnifiedGameEvent, req domain.ChatRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.ChatProgress {
		return &domain.ChatProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)

	if chat, ok := ev.Data.(domain.ChatData); ok {
		addContribution(&meta.ProgressBase, pctx, ev.Timestamp, 1, chat.Message)
	}

	meta.CurrentTotalCount = sumContributions(&meta.ProgressBase)
	value := max(existingValue(existing), meta.CurrentTotalCount)

	return finish(meta, req, value, value >= req.Amount, existing)
}
