package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// calculateExperience measures skill experience gained since the board started.
// Each contributor's baseline is captured once; a failed lookup leaves existing
// progress untouched instead of recording a loss.
func (e *Engine) calculateExperience(ctx context.Context, ev domain.UnifiedGameEvent, req domain.ExperienceRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	log := logger.FromContext(ctx)

	fallback := func() domain.ProgressResult {
		if existing != nil && existing.ProgressMetadata != nil {
			return unchanged(existing)
		}
		meta := &domain.ExperienceProgress{ProgressBase: newBase(req), Skill: req.Skill}
		touch(&meta.ProgressBase, req, ev)
		return finish(meta, req, 0, false, existing)
	}

	if e.xp == nil {
		return fallback()
	}

	current, err := e.xp.CurrentExperience(ctx, pctx.PlayerName, req.Skill)
	if err != nil {
		log.Warn("Experience lookup failed, keeping progress", "player", pctx.PlayerName, "skill", req.Skill, "error", err)
		return fallback()
	}

	meta := resume(existing, func() *domain.ExperienceProgress {
		return &domain.ExperienceProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)
	meta.Skill = req.Skill

	baseline, ok := findBaseline(meta.Baselines, pctx)
	if !ok {
		start, found, err := e.xp.ExperienceAtOrBefore(ctx, pctx.PlayerName, req.Skill, pctx.EventStartTime)
		switch {
		case err == nil && found:
			baseline = start
		case err == nil, errors.Is(err, domain.ErrPlayerNotFound):
			// No snapshot before the board started; the first observation becomes the baseline
			baseline = current
		default:
			log.Warn("Baseline lookup failed, keeping progress", "player", pctx.PlayerName, "skill", req.Skill, "error", err)
			return fallback()
		}
		meta.Baselines = append(meta.Baselines, domain.ExperienceBaseline{
			AccountID:  pctx.AccountID,
			PlayerName: pctx.PlayerName,
			Experience: baseline,
			CapturedAt: ev.Timestamp,
		})
	}

	gained := max(0, current-baseline)
	setContribution(&meta.ProgressBase, pctx, ev.Timestamp, gained, fmt.Sprintf("%d %s xp gained", gained, req.Skill))

	meta.CurrentTotalGained = sumContributions(&meta.ProgressBase)
	value := max(existingValue(existing), meta.CurrentTotalGained)

	return finish(meta, req, value, value >= req.Experience, existing)
}

func findBaseline(baselines []domain.ExperienceBaseline, pctx domain.PlayerContext) (int64, bool) {
	for _, b := range baselines {
		if pctx.AccountID != "" {
			if b.AccountID == pctx.AccountID {
				return b.Experience, true
			}
			continue
		}
		if b.AccountID == "" && strings.EqualFold(b.PlayerName, pctx.PlayerName) {
			return b.Experience, true
		}
	}
	return 0, false
}
