package domain

import "encoding/json"

// RequirementType is the variant tag of a RequirementDef
type RequirementType string

const (
	RequirementItemDrop   RequirementType = "ITEM_DROP"
	RequirementPet        RequirementType = "PET"
	RequirementValueDrop  RequirementType = "VALUE_DROP"
	RequirementSpeedrun   RequirementType = "SPEEDRUN"
	RequirementExperience RequirementType = "EXPERIENCE"
	RequirementBAGambles  RequirementType = "BA_GAMBLES"
	RequirementChat       RequirementType = "CHAT"
	RequirementPuzzle     RequirementType = "PUZZLE"
)

// AggregationPolicy states how contributions combine into the team value and
// which direction of the value counts as better.
type AggregationPolicy string

const (
	// AggregationSum adds contributor values; higher is better
	AggregationSum AggregationPolicy = "sum"
	// AggregationMin keeps the lowest observed value; lower is better
	AggregationMin AggregationPolicy = "min"
	// AggregationMaxGain sums gains over a baseline and never lets the team value drop
	AggregationMaxGain AggregationPolicy = "max_gain"
	// AggregationNone never progresses
	AggregationNone AggregationPolicy = "none"
)

// LowerIsBetter reports whether smaller values represent more progress
func (p AggregationPolicy) LowerIsBetter() bool {
	return p == AggregationMin
}

// Reached reports whether value satisfies threshold under this policy.
// A zero value never satisfies a lower-is-better threshold since zero means "no observation".
func (p AggregationPolicy) Reached(value, threshold int64) bool {
	switch p {
	case AggregationMin:
		return value > 0 && value <= threshold
	case AggregationNone:
		return false
	default:
		return value >= threshold
	}
}

// Better returns the better of two values under this policy
func (p AggregationPolicy) Better(a, b int64) int64 {
	if p == AggregationMin {
		if a <= 0 {
			return b
		}
		if b <= 0 || a < b {
			return a
		}
		return b
	}
	if a > b {
		return a
	}
	return b
}

// Requirement is a single typed objective bound to a tile. Requirements are
// immutable configuration; editing a tile replaces the definition.
//
//sumtype:decl
type Requirement interface {
	Type() RequirementType
	Aggregation() AggregationPolicy
	TargetValue() int64
	isRequirement()
}

// Tiered is implemented by requirements that define intermediate thresholds
type Tiered interface {
	TierThresholds() []int64
}

// ItemTarget is one item id the ITEM_DROP requirement counts
type ItemTarget struct {
	ItemID   int    `json:"item_id" validate:"gt=0"`
	ItemName string `json:"item_name,omitempty"`
	Amount   int64  `json:"amount" validate:"gt=0"`
}

// ItemDropRequirement asks for drops of one or more items. With TotalAmount set
// the matched quantities are pooled; otherwise every item must reach its own amount.
type ItemDropRequirement struct {
	Items       []ItemTarget `json:"items" validate:"required,min=1,dive"`
	TotalAmount *int64       `json:"total_amount,omitempty" validate:"omitempty,gt=0"`
	Tiers       []int64      `json:"tiers,omitempty" validate:"omitempty,dive,gt=0"`
}

// PetRequirement asks for a number of pet drops matching PetName
type PetRequirement struct {
	PetName string `json:"pet_name" validate:"required"`
	Amount  int64  `json:"amount" validate:"gt=0"`
}

// ValueDropRequirement asks for a cumulative loot value in gp
type ValueDropRequirement struct {
	Value int64   `json:"value" validate:"gt=0"`
	Tiers []int64 `json:"tiers,omitempty" validate:"omitempty,dive,gt=0"`
}

// SpeedrunRequirement asks for a completion time at Location of at most GoalSeconds
type SpeedrunRequirement struct {
	Location    string  `json:"location" validate:"required"`
	GoalSeconds int64   `json:"goal_seconds" validate:"gt=0"`
	Tiers       []int64 `json:"tiers,omitempty" validate:"omitempty,dive,gt=0"`
}

// ExperienceRequirement asks for Experience gained in Skill since the board started
type ExperienceRequirement struct {
	Skill      string  `json:"skill" validate:"required"`
	Experience int64   `json:"experience" validate:"gt=0"`
	Tiers      []int64 `json:"tiers,omitempty" validate:"omitempty,dive,gt=0"`
}

// BAGamblesRequirement asks for a number of Barbarian Assault high gambles
type BAGamblesRequirement struct {
	Amount int64   `json:"amount" validate:"gt=0"`
	Tiers  []int64 `json:"tiers,omitempty" validate:"omitempty,dive,gt=0"`
}

// ChatRequirement counts chat messages from an allowed source matching Pattern
type ChatRequirement struct {
	Sources []string `json:"sources,omitempty"`
	Pattern string   `json:"pattern" validate:"required,chatpattern"`
	Amount  int64    `json:"amount" validate:"gt=0"`
	Tiers   []int64  `json:"tiers,omitempty" validate:"omitempty,dive,gt=0"`
}

// PuzzleRequirement hides a nested requirement behind display metadata that
// does not reveal the nested kind to participants.
type PuzzleRequirement struct {
	HiddenRequirement Requirement `json:"hidden_requirement" validate:"required"`
	DisplayName       string      `json:"display_name" validate:"required"`
	Description       string      `json:"description,omitempty"`
	Hint              string      `json:"hint,omitempty"`
}

// UnknownRequirement preserves a definition whose type tag is not recognized.
// It never progresses.
type UnknownRequirement struct {
	RawType string
	Raw     json.RawMessage
}

func (ItemDropRequirement) Type() RequirementType   { return RequirementItemDrop }
func (PetRequirement) Type() RequirementType        { return RequirementPet }
func (ValueDropRequirement) Type() RequirementType  { return RequirementValueDrop }
func (SpeedrunRequirement) Type() RequirementType   { return RequirementSpeedrun }
func (ExperienceRequirement) Type() RequirementType { return RequirementExperience }
func (BAGamblesRequirement) Type() RequirementType  { return RequirementBAGambles }
func (ChatRequirement) Type() RequirementType       { return RequirementChat }
func (PuzzleRequirement) Type() RequirementType     { return RequirementPuzzle }
func (r UnknownRequirement) Type() RequirementType  { return RequirementType(r.RawType) }

func (ItemDropRequirement) Aggregation() AggregationPolicy   { return AggregationSum }
func (PetRequirement) Aggregation() AggregationPolicy        { return AggregationSum }
func (ValueDropRequirement) Aggregation() AggregationPolicy  { return AggregationSum }
func (SpeedrunRequirement) Aggregation() AggregationPolicy   { return AggregationMin }
func (ExperienceRequirement) Aggregation() AggregationPolicy { return AggregationMaxGain }
func (BAGamblesRequirement) Aggregation() AggregationPolicy  { return AggregationSum }
func (ChatRequirement) Aggregation() AggregationPolicy       { return AggregationSum }
func (UnknownRequirement) Aggregation() AggregationPolicy    { return AggregationNone }

// Aggregation of a puzzle is the aggregation of the requirement it hides
func (r PuzzleRequirement) Aggregation() AggregationPolicy {
	if r.HiddenRequirement == nil {
		return AggregationNone
	}
	return r.HiddenRequirement.Aggregation()
}

// TargetValue of an item drop is the pooled total when set, otherwise the sum of per-item amounts
func (r ItemDropRequirement) TargetValue() int64 {
	if r.TotalAmount != nil {
		return *r.TotalAmount
	}
	var total int64
	for _, item := range r.Items {
		total += item.Amount
	}
	return total
}

func (r PetRequirement) TargetValue() int64        { return r.Amount }
func (r ValueDropRequirement) TargetValue() int64  { return r.Value }
func (r SpeedrunRequirement) TargetValue() int64   { return r.GoalSeconds }
func (r ExperienceRequirement) TargetValue() int64 { return r.Experience }
func (r BAGamblesRequirement) TargetValue() int64  { return r.Amount }
func (r ChatRequirement) TargetValue() int64       { return r.Amount }
func (UnknownRequirement) TargetValue() int64      { return 0 }

func (r PuzzleRequirement) TargetValue() int64 {
	if r.HiddenRequirement == nil {
		return 0
	}
	return r.HiddenRequirement.TargetValue()
}

func (r ItemDropRequirement) TierThresholds() []int64   { return r.Tiers }
func (r ValueDropRequirement) TierThresholds() []int64  { return r.Tiers }
func (r SpeedrunRequirement) TierThresholds() []int64   { return r.Tiers }
func (r ExperienceRequirement) TierThresholds() []int64 { return r.Tiers }
func (r BAGamblesRequirement) TierThresholds() []int64  { return r.Tiers }
func (r ChatRequirement) TierThresholds() []int64       { return r.Tiers }

func (ItemDropRequirement) isRequirement()   {}
func (PetRequirement) isRequirement()        {}
func (ValueDropRequirement) isRequirement()  {}
func (SpeedrunRequirement) isRequirement()   {}
func (ExperienceRequirement) isRequirement() {}
func (BAGamblesRequirement) isRequirement()  {}
func (ChatRequirement) isRequirement()       {}
func (PuzzleRequirement) isRequirement()     {}
func (UnknownRequirement) isRequirement()    {}

// Hidden returns the nested requirement of a puzzle, or the requirement itself
func Hidden(r Requirement) Requirement {
	if p, ok := r.(PuzzleRequirement); ok && p.HiddenRequirement != nil {
		return Hidden(p.HiddenRequirement)
	}
	return r
}
