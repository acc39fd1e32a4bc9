package progress

import (
	"strings"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// contributor finds or creates the entry for the acting player. Attributed
// players are keyed by account id; unattributed ones by name, and the two
// never merge.
func contributor(base *domain.ProgressBase, pctx domain.PlayerContext) *domain.PlayerContribution {
	for i := range base.PlayerContributions {
		c := &base.PlayerContributions[i]
		if pctx.AccountID != "" {
			if c.AccountID == pctx.AccountID {
				if pctx.PlayerName != "" {
					c.PlayerName = pctx.PlayerName
				}
				return c
			}
			continue
		}
		if c.AccountID == "" && strings.EqualFold(c.PlayerName, pctx.PlayerName) {
			return c
		}
	}

	base.PlayerContributions = append(base.PlayerContributions, domain.PlayerContribution{
		AccountID:  pctx.AccountID,
		PlayerName: pctx.PlayerName,
	})
	return &base.PlayerContributions[len(base.PlayerContributions)-1]
}

// addContribution adds delta to the acting player's running value
func addContribution(base *domain.ProgressBase, pctx domain.PlayerContext, at time.Time, delta int64, detail string) {
	c := contributor(base, pctx)
	c.Value += delta
	c.History = appendHistory(c.History, domain.ContributionEntry{Timestamp: at, Value: delta, Detail: detail})
}

// setContribution replaces the acting player's value, recording history only on change
func setContribution(base *domain.ProgressBase, pctx domain.PlayerContext, at time.Time, value int64, detail string) {
	c := contributor(base, pctx)
	if c.Value == value && len(c.History) > 0 {
		return
	}
	c.Value = value
	c.History = appendHistory(c.History, domain.ContributionEntry{Timestamp: at, Value: value, Detail: detail})
}

// bestContribution keeps the better of the acting player's value and value under policy
func bestContribution(base *domain.ProgressBase, pctx domain.PlayerContext, at time.Time, value int64, policy domain.AggregationPolicy, detail string) {
	c := contributor(base, pctx)
	c.Value = policy.Better(c.Value, value)
	c.History = appendHistory(c.History, domain.ContributionEntry{Timestamp: at, Value: value, Detail: detail})
}

func sumContributions(base *domain.ProgressBase) int64 {
	var total int64
	for _, c := range base.PlayerContributions {
		total += c.Value
	}
	return total
}

func appendHistory(history []domain.ContributionEntry, entry domain.ContributionEntry) []domain.ContributionEntry {
	history = append(history, entry)
	if over := len(history) - domain.MaxContributionHistory; over > 0 {
		history = append([]domain.ContributionEntry(nil), history[over:]...)
	}
	return history
}
