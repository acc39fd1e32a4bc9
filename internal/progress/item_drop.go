package progress

import (
	"fmt"
	"slices"
	"strings"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

func calculateItemDrop(ev domain.UnifiedGameEvent, req domain.ItemDropRequirement, existing *domain.ExistingProgress, pctx domain.PlayerContext) domain.ProgressResult {
	meta := resume(existing, func() *domain.ItemDropProgress {
		return &domain.ItemDropProgress{ProgressBase: newBase(req)}
	})
	touch(&meta.ProgressBase, req, ev)

	if loot, ok := ev.Data.(domain.LootData); ok {
		var delta int64
		var details []string
		for _, item := range loot.Items {
			if item.Quantity <= 0 || !targetsItem(req, item.ID) {
				continue
			}
			delta += item.Quantity
			meta.ItemCounts = addItemCount(meta.ItemCounts, item.ID, item.Quantity)
			details = append(details, fmt.Sprintf("%dx %s", item.Quantity, itemLabel(item)))
		}
		if delta > 0 {
			addContribution(&meta.ProgressBase, pctx, ev.Timestamp, delta, strings.Join(details, ", "))
		}
	}

	meta.CurrentTotalCount = sumContributions(&meta.ProgressBase)
	value := max(existingValue(existing), meta.CurrentTotalCount)

	return finish(meta, req, value, itemDropReached(req, meta, value), existing)
}

func targetsItem(req domain.ItemDropRequirement, id int) bool {
	for _, target := range req.Items {
		if target.ItemID == id {
			return true
		}
	}
	return false
}

// addItemCount keeps counts sorted by item id so metadata is deterministic
func addItemCount(counts []domain.ItemCount, id int, qty int64) []domain.ItemCount {
	i, found := slices.BinarySearchFunc(counts, id, func(c domain.ItemCount, id int) int {
		return c.ItemID - id
	})
	if found {
		counts[i].Count += qty
		return counts
	}
	return slices.Insert(counts, i, domain.ItemCount{ItemID: id, Count: qty})
}

func itemDropReached(req domain.ItemDropRequirement, meta *domain.ItemDropProgress, value int64) bool {
	if req.TotalAmount != nil {
		return value >= *req.TotalAmount
	}
	for _, target := range req.Items {
		var have int64
		for _, c := range meta.ItemCounts {
			if c.ItemID == target.ItemID {
				have = c.Count
				break
			}
		}
		if have < target.Amount {
			return false
		}
	}
	return len(req.Items) > 0
}

func itemLabel(item domain.LootItem) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("item %d", item.ID)
}
