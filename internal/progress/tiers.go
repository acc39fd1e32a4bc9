package progress

import (
	"slices"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// evaluateTiers merges the tiers value reaches now with those recorded before.
// Recorded tiers are never dropped, so the returned list only grows.
func evaluateTiers(req domain.Requirement, value int64, previous []int) ([]int, *int) {
	tiered, ok := req.(domain.Tiered)
	if !ok || len(tiered.TierThresholds()) == 0 {
		if len(previous) == 0 {
			return nil, nil
		}
		return previous, highest(previous)
	}

	policy := req.Aggregation()
	completed := slices.Clone(previous)
	for i, threshold := range tiered.TierThresholds() {
		if policy.Reached(value, threshold) && !slices.Contains(completed, i) {
			completed = append(completed, i)
		}
	}
	if len(completed) == 0 {
		return nil, nil
	}
	slices.Sort(completed)
	return completed, highest(completed)
}

func highest(tiers []int) *int {
	top := slices.Max(tiers)
	return &top
}

// NewTiers returns the tier indices present in current but not in previous
func NewTiers(previous, current []int) []int {
	var out []int
	for _, tier := range current {
		if !slices.Contains(previous, tier) {
			out = append(out, tier)
		}
	}
	return out
}
