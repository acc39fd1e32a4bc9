package requirement

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// KeyPrefixUnknown prefixes the canonical JSON key of kinds without a dedicated form
const KeyPrefixUnknown = "UNKNOWN:"

// KeyOf derives the stable identifier joining an authored requirement to its
// stored progress. Composite parts are sorted so author order never changes
// the key, while any change to the requirement's identity does.
func KeyOf(req domain.Requirement) string {
	switch r := req.(type) {
	case domain.ItemDropRequirement:
		return itemDropKey(r)
	case domain.PetRequirement:
		return fmt.Sprintf("%s:%s:%d", domain.RequirementPet, r.PetName, r.Amount)
	case domain.ValueDropRequirement:
		return fmt.Sprintf("%s:%d", domain.RequirementValueDrop, r.Value)
	case domain.SpeedrunRequirement:
		return fmt.Sprintf("%s:%s:%d", domain.RequirementSpeedrun, r.Location, r.GoalSeconds)
	case domain.ExperienceRequirement:
		return fmt.Sprintf("%s:%s:%d", domain.RequirementExperience, r.Skill, r.Experience)
	case domain.BAGamblesRequirement:
		return fmt.Sprintf("%s:%d", domain.RequirementBAGambles, r.Amount)
	default:
		return canonicalKey(req)
	}
}

func itemDropKey(r domain.ItemDropRequirement) string {
	items := slices.Clone(r.Items)
	slices.SortFunc(items, func(a, b domain.ItemTarget) int {
		if c := cmp.Compare(a.ItemID, b.ItemID); c != 0 {
			return c
		}
		return cmp.Compare(a.Amount, b.Amount)
	})

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = strconv.Itoa(item.ItemID) + ":" + strconv.FormatInt(item.Amount, 10)
	}

	key := string(domain.RequirementItemDrop) + ":" + strings.Join(parts, ",")
	if r.TotalAmount != nil {
		key += ":total=" + strconv.FormatInt(*r.TotalAmount, 10)
	}
	return key
}

// canonicalKey serializes through a generic map so object keys come out sorted
func canonicalKey(req domain.Requirement) string {
	if req == nil {
		return KeyPrefixUnknown + "null"
	}
	data, err := json.Marshal(req)
	if err != nil {
		return KeyPrefixUnknown + string(req.Type())
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return KeyPrefixUnknown + string(data)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return KeyPrefixUnknown + string(data)
	}
	return KeyPrefixUnknown + string(canonical)
}
