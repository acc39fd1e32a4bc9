package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// SourceDink is the source name of the Dink RuneLite plugin webhook
const SourceDink = "dink"

// Dink notification types
const (
	dinkLoot        = "LOOT"
	dinkPet         = "PET"
	dinkSpeedrun    = "SPEEDRUN"
	dinkKillCount   = "KILL_COUNT"
	dinkGamble      = "BARBARIAN_ASSAULT_GAMBLE"
	dinkLogout      = "LOGOUT"
	dinkChat        = "CHAT"
	dinkLevel       = "LEVEL"
	dinkXPMilestone = "XP_MILESTONE"
)

type dinkPayload struct {
	Type        string          `json:"type" validate:"required"`
	PlayerName  string          `json:"playerName" validate:"required,max=12"`
	AccountHash string          `json:"dinkAccountHash"`
	Timestamp   *time.Time      `json:"timestamp"`
	Extra       json.RawMessage `json:"extra"`
}

type dinkLootExtra struct {
	Items []struct {
		ID        int    `json:"id"`
		Quantity  int64  `json:"quantity"`
		PriceEach int64  `json:"priceEach"`
		Name      string `json:"name"`
	} `json:"items"`
	Source string `json:"source"`
}

type dinkPetExtra struct {
	PetName   string `json:"petName"`
	Duplicate bool   `json:"duplicate"`
}

type dinkSpeedrunExtra struct {
	QuestName      string `json:"questName"`
	CurrentTime    string `json:"currentTime"`
	IsPersonalBest bool   `json:"isPersonalBest"`
}

type dinkKillCountExtra struct {
	Boss           string `json:"boss"`
	Time           string `json:"time"`
	IsPersonalBest bool   `json:"isPersonalBest"`
}

type dinkGambleExtra struct {
	GambleCount int64 `json:"gambleCount"`
}

type dinkChatExtra struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type dinkLevelExtra struct {
	LevelledSkills map[string]int `json:"levelledSkills"`
}

type dinkMilestoneExtra struct {
	MilestoneAchieved []string `json:"milestoneAchieved"`
}

// DinkAdapter normalizes Dink plugin notifications
type DinkAdapter struct {
	accounts AccountResolver
	validate *validator.Validate
	now      func() time.Time

	// receipts maps a payload digest to the time it was first received
	receiptMu sync.Mutex
	receipts  *expirable.LRU[string, time.Time]
}

// NewDinkAdapter creates a Dink adapter. accounts may be nil, in which case
// every event is unattributed.
func NewDinkAdapter(accounts AccountResolver) *DinkAdapter {
	return &DinkAdapter{
		accounts: accounts,
		validate: validator.New(),
		now:      time.Now,
		receipts: expirable.NewLRU[string, time.Time](redeliveryCacheSize, nil, RedeliveryWindow),
	}
}

// Adapt implements SourceAdapter
func (a *DinkAdapter) Adapt(ctx context.Context, raw []byte) (*domain.UnifiedGameEvent, error) {
	log := logger.FromContext(ctx)

	var payload dinkPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}
	if err := a.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}

	data, err := a.convert(payload)
	if err != nil {
		return nil, err
	}
	if data == nil {
		log.Debug("Dropping irrelevant event", "dink_type", payload.Type, "player", payload.PlayerName)
		return nil, nil
	}

	ev := &domain.UnifiedGameEvent{
		EventType:  data.EventType(),
		PlayerName: payload.PlayerName,
		Source:     SourceDink,
		Data:       data,
	}
	if payload.Timestamp != nil && !payload.Timestamp.IsZero() {
		ev.Timestamp = payload.Timestamp.UTC()
	} else {
		ev.Timestamp = a.receivedAt(raw)
	}

	if a.accounts != nil {
		accountID, err := a.accounts.ResolveAccountByName(ctx, payload.PlayerName)
		if err != nil {
			log.Warn("Account lookup failed, event stays unattributed", "player", payload.PlayerName, "error", err)
		}
		ev.AccountID = accountID
	}

	ev.EventID = EventID(*ev)
	return ev, nil
}

// receivedAt stamps a payload that has no timestamp with its full-precision
// receive time. A byte-identical payload inside RedeliveryWindow is a resend and
// gets the first receipt's time, so both map to one event id.
func (a *DinkAdapter) receivedAt(raw []byte) time.Time {
	sum := sha256.Sum256(raw)
	digest := hex.EncodeToString(sum[:])

	a.receiptMu.Lock()
	defer a.receiptMu.Unlock()

	now := a.now().UTC()
	if first, ok := a.receipts.Get(digest); ok && now.Sub(first) <= RedeliveryWindow {
		return first
	}
	a.receipts.Add(digest, now)
	return now
}

// convert returns nil data for notification types that cannot drive progress
func (a *DinkAdapter) convert(p dinkPayload) (domain.GameEventData, error) {
	switch strings.ToUpper(p.Type) {
	case dinkLoot:
		var extra dinkLootExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		loot := domain.LootData{Source: extra.Source, Items: make([]domain.LootItem, 0, len(extra.Items))}
		for _, item := range extra.Items {
			loot.Items = append(loot.Items, domain.LootItem{ID: item.ID, Name: item.Name, Quantity: item.Quantity, PriceEach: item.PriceEach})
			loot.TotalValue += item.PriceEach * item.Quantity
		}
		return loot, nil

	case dinkPet:
		var extra dinkPetExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		if extra.PetName == "" {
			return nil, nil
		}
		return domain.PetData{PetName: extra.PetName, Duplicate: extra.Duplicate}, nil

	case dinkSpeedrun:
		var extra dinkSpeedrunExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		seconds, ok := ParseDurationSeconds(extra.CurrentTime)
		if !ok {
			return nil, nil
		}
		return domain.SpeedrunData{Location: extra.QuestName, DurationSeconds: seconds, IsPersonalBest: extra.IsPersonalBest}, nil

	case dinkKillCount:
		var extra dinkKillCountExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		seconds, ok := ParseDurationSeconds(extra.Time)
		if !ok {
			return nil, nil
		}
		return domain.SpeedrunData{Location: extra.Boss, DurationSeconds: seconds, IsPersonalBest: extra.IsPersonalBest}, nil

	case dinkGamble:
		// Each notification is a single high gamble; gambleCount is the
		// player's running total and tells consecutive gambles apart
		var extra dinkGambleExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		return domain.GambleData{GambleCount: 1, TotalGambles: extra.GambleCount}, nil

	case dinkLogout:
		return domain.LogoutData{}, nil

	case dinkChat:
		var extra dinkChatExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		if extra.Message == "" {
			return nil, nil
		}
		return domain.ChatData{Message: extra.Message, MessageSource: extra.Type}, nil

	case dinkLevel:
		var extra dinkLevelExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		return experienceData(mapKeys(extra.LevelledSkills)), nil

	case dinkXPMilestone:
		var extra dinkMilestoneExtra
		if err := decodeExtra(p.Extra, &extra); err != nil {
			return nil, err
		}
		return experienceData(extra.MilestoneAchieved), nil

	default:
		return nil, nil
	}
}

// experienceData names the skill when exactly one changed; otherwise every skill requirement is refreshed
func experienceData(skills []string) domain.ExperienceData {
	if len(skills) == 1 {
		return domain.ExperienceData{Skill: strings.ToLower(skills[0])}
	}
	return domain.ExperienceData{}
}

func mapKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func decodeExtra(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: extra: %v", domain.ErrInvalidEvent, err)
	}
	return nil
}
