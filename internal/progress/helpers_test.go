package progress

import (
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

var boardStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func player(accountID, name string) domain.PlayerContext {
	return domain.PlayerContext{TeamID: 1, AccountID: accountID, PlayerName: name, EventStartTime: boardStart}
}

func gameEvent(pctx domain.PlayerContext, minute int, data domain.GameEventData) domain.UnifiedGameEvent {
	return domain.UnifiedGameEvent{
		EventID:    "evt",
		EventType:  data.EventType(),
		PlayerName: pctx.PlayerName,
		AccountID:  pctx.AccountID,
		Timestamp:  boardStart.Add(time.Duration(minute) * time.Minute),
		Source:     "dink",
		Data:       data,
	}
}

// asExisting turns a result into the stored state for the next call
func asExisting(r domain.ProgressResult) *domain.ExistingProgress {
	return &domain.ExistingProgress{
		ProgressValue:    r.ProgressValue,
		ProgressMetadata: r.ProgressMetadata,
		IsCompleted:      r.IsCompleted,
	}
}
