package progress

import (
	"fmt"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// calculateSpeedrun keeps the team's best (lowest) time. It is the one kind
// whose value may decrease, since a lower time replaces a higher one.
func calculateSpeedrun(ev domain.UnifiedGameEvent, req domain.SpeedrunRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.SpeedrunProgress {
		return &domain.SpeedrunProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)
	meta.Location = req.Location

	policy := req.Aggregation()
	if run, ok := ev.Data.(domain.SpeedrunData); ok && run.DurationSeconds > 0 {
		bestContribution(&meta.ProgressBase, pctx, ev.Timestamp, run.DurationSeconds, policy, fmt.Sprintf("%ds at %s", run.DurationSeconds, run.Location))
		meta.CurrentBestTimeSeconds = policy.Better(meta.CurrentBestTimeSeconds, run.DurationSeconds)
	}

	value := policy.Better(existingValue(existing), meta.CurrentBestTimeSeconds)
	meta.CurrentBestTimeSeconds = value

	return finish(meta, req, value, policy.Reached(value, req.GoalSeconds), existing)
}
