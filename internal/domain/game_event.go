package domain

import "time"

// GameEventType identifies the kind of gameplay telemetry carried by a UnifiedGameEvent
type GameEventType string

const (
	GameEventLoot       GameEventType = "LOOT"
	GameEventPet        GameEventType = "PET"
	GameEventSpeedrun   GameEventType = "SPEEDRUN"
	GameEventBAGamble   GameEventType = "BA_GAMBLE"
	GameEventLogout     GameEventType = "LOGOUT"
	GameEventChat       GameEventType = "CHAT"
	GameEventExperience GameEventType = "EXPERIENCE"
)

// UnifiedGameEvent is the source-independent form of a telemetry event.
// It is immutable once built by an adapter; one event may drive progress on many tiles.
type UnifiedGameEvent struct {
	EventID    string        `json:"event_id"`
	EventType  GameEventType `json:"event_type"`
	PlayerName string        `json:"player_name"`
	AccountID  string        `json:"account_id,omitempty"` // empty when the player could not be resolved
	Timestamp  time.Time     `json:"timestamp"`
	Source     string        `json:"source"`
	Data       GameEventData `json:"data"`
}

// Attributed reports whether the event was resolved to an internal account
func (e UnifiedGameEvent) Attributed() bool {
	return e.AccountID != ""
}

// GameEventData is the payload of a UnifiedGameEvent, one variant per GameEventType.
//
//sumtype:decl
type GameEventData interface {
	EventType() GameEventType
	isGameEventData()
}

// LootItem is a single stack within a loot event
type LootItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	PriceEach int64  `json:"price_each"`
}

// LootData is the payload of a LOOT event
type LootData struct {
	Items      []LootItem `json:"items"`
	TotalValue int64      `json:"total_value"`
	Source     string     `json:"source,omitempty"`
}

// PetData is the payload of a PET event
type PetData struct {
	PetName   string `json:"pet_name"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// SpeedrunData is the payload of a SPEEDRUN event. Kill-count events that
// carry a duration are normalized into this shape with the boss as location.
type SpeedrunData struct {
	Location        string `json:"location"`
	DurationSeconds int64  `json:"duration_seconds"`
	IsPersonalBest  bool   `json:"is_personal_best,omitempty"`
}

// GambleData is the payload of a BA_GAMBLE event. TotalGambles is the
// player's lifetime count reported by the source, zero when unknown.
type GambleData struct {
	GambleCount  int64 `json:"gamble_count"`
	TotalGambles int64 `json:"total_gambles,omitempty"`
}

// LogoutData is the empty payload of a LOGOUT event
type LogoutData struct{}

// ChatData is the payload of a CHAT event
type ChatData struct {
	Message       string `json:"message"`
	MessageSource string `json:"message_source"`
}

// ExperienceData is the payload of an EXPERIENCE event
type ExperienceData struct {
	Skill      string `json:"skill"`
	Experience int64  `json:"experience,omitempty"`
}

func (LootData) EventType() GameEventType       { return GameEventLoot }
func (PetData) EventType() GameEventType        { return GameEventPet }
func (SpeedrunData) EventType() GameEventType   { return GameEventSpeedrun }
func (GambleData) EventType() GameEventType     { return GameEventBAGamble }
func (LogoutData) EventType() GameEventType     { return GameEventLogout }
func (ChatData) EventType() GameEventType       { return GameEventChat }
func (ExperienceData) EventType() GameEventType { return GameEventExperience }

func (LootData) isGameEventData()       {}
func (PetData) isGameEventData()        {}
func (SpeedrunData) isGameEventData()   {}
func (GambleData) isGameEventData()     {}
func (LogoutData) isGameEventData()     {}
func (ChatData) isGameEventData()       {}
func (ExperienceData) isGameEventData() {}
