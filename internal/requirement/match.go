package requirement

import (
	"regexp"
	"strings"
	"sync"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// plausibleKinds lists, per event type, the requirement kinds it can ever advance
var plausibleKinds = map[domain.GameEventType][]domain.RequirementType{
	domain.GameEventLoot:       {domain.RequirementItemDrop, domain.RequirementValueDrop},
	domain.GameEventPet:        {domain.RequirementPet},
	domain.GameEventSpeedrun:   {domain.RequirementSpeedrun},
	domain.GameEventBAGamble:   {domain.RequirementBAGambles},
	domain.GameEventChat:       {domain.RequirementChat},
	domain.GameEventLogout:     {domain.RequirementExperience},
	domain.GameEventExperience: {domain.RequirementExperience},
}

// Plausible reports whether an event of type t could progress req at all.
// Puzzles are plausible when the requirement they hide is.
func Plausible(t domain.GameEventType, req domain.Requirement) bool {
	hidden := domain.Hidden(req)
	for _, kind := range plausibleKinds[t] {
		if hidden.Type() == kind {
			return true
		}
	}
	return false
}

// Matches reports whether ev should be handed to the calculator for req.
// It checks plausibility and then the kind-specific identity of the event
// (item ids, pet name, location, skill, chat source and pattern).
func Matches(ev domain.UnifiedGameEvent, req domain.Requirement) bool {
	if !Plausible(ev.EventType, req) {
		return false
	}

	switch r := domain.Hidden(req).(type) {
	case domain.ItemDropRequirement:
		loot, ok := ev.Data.(domain.LootData)
		if !ok {
			return false
		}
		for _, item := range loot.Items {
			for _, target := range r.Items {
				if item.ID == target.ItemID && item.Quantity > 0 {
					return true
				}
			}
		}
		return false
	case domain.ValueDropRequirement:
		loot, ok := ev.Data.(domain.LootData)
		return ok && loot.TotalValue > 0
	case domain.PetRequirement:
		pet, ok := ev.Data.(domain.PetData)
		return ok && sameName(pet.PetName, r.PetName)
	case domain.SpeedrunRequirement:
		run, ok := ev.Data.(domain.SpeedrunData)
		return ok && run.DurationSeconds > 0 && sameName(run.Location, r.Location)
	case domain.BAGamblesRequirement:
		_, ok := ev.Data.(domain.GambleData)
		return ok
	case domain.ExperienceRequirement:
		switch data := ev.Data.(type) {
		case domain.LogoutData:
			return true
		case domain.ExperienceData:
			return data.Skill == "" || sameName(data.Skill, r.Skill)
		}
		return false
	case domain.ChatRequirement:
		chat, ok := ev.Data.(domain.ChatData)
		return ok && MatchesChat(chat, r)
	default:
		return false
	}
}

// MatchesChat reports whether a chat message comes from an allowed source and matches the pattern
func MatchesChat(chat domain.ChatData, req domain.ChatRequirement) bool {
	if len(req.Sources) > 0 {
		allowed := false
		for _, source := range req.Sources {
			if sameName(source, chat.MessageSource) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	re, err := compilePattern(req.Pattern)
	if err != nil {
		return false
	}
	return re.MatchString(chat.Message)
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

var patternCache sync.Map // pattern -> *regexp.Regexp

// compilePattern compiles a case-insensitive chat pattern once per process
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := patternCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
