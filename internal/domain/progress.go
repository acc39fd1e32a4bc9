package domain

import (
	"slices"
	"time"
)

// MaxContributionHistory bounds the per-player history kept in progress metadata
const MaxContributionHistory = 20

// ContributionEntry is one recorded contribution by a player
type ContributionEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int64     `json:"value"`
	Detail    string    `json:"detail,omitempty"`
}

// PlayerContribution accumulates what one player added to a requirement.
// Unattributed players are keyed by name with an empty AccountID.
type PlayerContribution struct {
	AccountID  string              `json:"account_id,omitempty"`
	PlayerName string              `json:"player_name"`
	Value      int64               `json:"value"`
	History    []ContributionEntry `json:"history,omitempty"`
}

// ProgressBase holds the fields every progress metadata variant carries
type ProgressBase struct {
	RequirementType     RequirementType      `json:"requirement_type"`
	TargetValue         int64                `json:"target_value"`
	LastUpdateAt        time.Time            `json:"last_update_at"`
	PlayerContributions []PlayerContribution `json:"player_contributions"`
	CompletedTiers      []int                `json:"completed_tiers,omitempty"`
	CurrentTier         *int                 `json:"current_tier,omitempty"`
}

// Base returns the common fields
func (b *ProgressBase) Base() *ProgressBase { return b }

func (b ProgressBase) clone() ProgressBase {
	out := b
	out.PlayerContributions = make([]PlayerContribution, len(b.PlayerContributions))
	for i, c := range b.PlayerContributions {
		c.History = slices.Clone(c.History)
		out.PlayerContributions[i] = c
	}
	out.CompletedTiers = slices.Clone(b.CompletedTiers)
	if b.CurrentTier != nil {
		tier := *b.CurrentTier
		out.CurrentTier = &tier
	}
	return out
}

// ProgressMetadata is the per-requirement state snapshot stored as a document.
// Variants are keyed by RequirementType.
//
//sumtype:decl
type ProgressMetadata interface {
	Type() RequirementType
	Base() *ProgressBase
	// Clone returns a deep copy; calculators never mutate stored metadata
	Clone() ProgressMetadata
	isProgressMetadata()
}

// ItemCount is the running count of one item id
type ItemCount struct {
	ItemID int   `json:"item_id"`
	Count  int64 `json:"count"`
}

type ItemDropProgress struct {
	ProgressBase
	CurrentTotalCount int64       `json:"current_total_count"`
	ItemCounts        []ItemCount `json:"item_counts,omitempty"`
}

type PetProgress struct {
	ProgressBase
	CurrentTotalCount int64 `json:"current_total_count"`
}

type ValueDropProgress struct {
	ProgressBase
	CurrentTotalValue int64 `json:"current_total_value"`
	CurrentBestValue  int64 `json:"current_best_value"`
}

type SpeedrunProgress struct {
	ProgressBase
	Location               string `json:"location"`
	CurrentBestTimeSeconds int64  `json:"current_best_time_seconds"`
}

// ExperienceBaseline is the skill experience a contributor had when the board started
type ExperienceBaseline struct {
	AccountID  string    `json:"account_id,omitempty"`
	PlayerName string    `json:"player_name"`
	Experience int64     `json:"experience"`
	CapturedAt time.Time `json:"captured_at"`
}

type ExperienceProgress struct {
	ProgressBase
	Skill              string               `json:"skill"`
	CurrentTotalGained int64                `json:"current_total_gained"`
	Baselines          []ExperienceBaseline `json:"baselines,omitempty"`
}

type BAGamblesProgress struct {
	ProgressBase
	CurrentTotalGambles int64 `json:"current_total_gambles"`
}

type ChatProgress struct {
	ProgressBase
	CurrentTotalCount int64 `json:"current_total_count"`
}

// PuzzleProgress wraps the progress of the requirement a puzzle hides.
// The hidden fields are stripped by the public read path.
type PuzzleProgress struct {
	ProgressBase
	DisplayName            string           `json:"display_name"`
	Hint                   string           `json:"hint,omitempty"`
	HiddenRequirementType  RequirementType  `json:"hidden_requirement_type,omitempty"`
	HiddenProgressMetadata ProgressMetadata `json:"hidden_progress_metadata,omitempty"`
	IsSolved               bool             `json:"is_solved"`
	SolvedAt               *time.Time       `json:"solved_at,omitempty"`
}

// InertProgress is the placeholder kept for requirements that cannot progress
type InertProgress struct {
	ProgressBase
}

func (*ItemDropProgress) Type() RequirementType   { return RequirementItemDrop }
func (*PetProgress) Type() RequirementType        { return RequirementPet }
func (*ValueDropProgress) Type() RequirementType  { return RequirementValueDrop }
func (*SpeedrunProgress) Type() RequirementType   { return RequirementSpeedrun }
func (*ExperienceProgress) Type() RequirementType { return RequirementExperience }
func (*BAGamblesProgress) Type() RequirementType  { return RequirementBAGambles }
func (*ChatProgress) Type() RequirementType       { return RequirementChat }
func (*PuzzleProgress) Type() RequirementType     { return RequirementPuzzle }
func (p *InertProgress) Type() RequirementType    { return p.RequirementType }

func (p *ItemDropProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	out.ItemCounts = slices.Clone(p.ItemCounts)
	return &out
}

func (p *PetProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	return &out
}

func (p *ValueDropProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	return &out
}

func (p *SpeedrunProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	return &out
}

func (p *ExperienceProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	out.Baselines = slices.Clone(p.Baselines)
	return &out
}

func (p *BAGamblesProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	return &out
}

func (p *ChatProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	return &out
}

func (p *PuzzleProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	if p.HiddenProgressMetadata != nil {
		out.HiddenProgressMetadata = p.HiddenProgressMetadata.Clone()
	}
	if p.SolvedAt != nil {
		solved := *p.SolvedAt
		out.SolvedAt = &solved
	}
	return &out
}

func (p *InertProgress) Clone() ProgressMetadata {
	out := *p
	out.ProgressBase = p.ProgressBase.clone()
	return &out
}

func (*ItemDropProgress) isProgressMetadata()   {}
func (*PetProgress) isProgressMetadata()        {}
func (*ValueDropProgress) isProgressMetadata()  {}
func (*SpeedrunProgress) isProgressMetadata()   {}
func (*ExperienceProgress) isProgressMetadata() {}
func (*BAGamblesProgress) isProgressMetadata()  {}
func (*ChatProgress) isProgressMetadata()       {}
func (*PuzzleProgress) isProgressMetadata()     {}
func (*InertProgress) isProgressMetadata()      {}

// ProgressResult is the output of a progress calculation
type ProgressResult struct {
	ProgressValue    int64            `json:"progress_value"`
	ProgressMetadata ProgressMetadata `json:"progress_metadata"`
	IsCompleted      bool             `json:"is_completed"`
	CompletedTiers   []int            `json:"completed_tiers,omitempty"`
}

// ExistingProgress is the persisted state a calculation starts from
type ExistingProgress struct {
	ProgressValue    int64            `json:"progress_value"`
	ProgressMetadata ProgressMetadata `json:"progress_metadata"`
	IsCompleted      bool             `json:"is_completed"`
}

// TileProgress is one stored (team, tile, requirement) progress row
type TileProgress struct {
	TeamID           int64            `json:"team_id"`
	TileID           int64            `json:"tile_id"`
	RequirementKey   string           `json:"requirement_key"`
	ProgressValue    int64            `json:"progress_value"`
	ProgressMetadata ProgressMetadata `json:"progress_metadata"`
	IsCompleted      bool             `json:"is_completed"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	Version          int64            `json:"version"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Existing returns the stored row as calculator input
func (p *TileProgress) Existing() *ExistingProgress {
	if p == nil {
		return nil
	}
	return &ExistingProgress{
		ProgressValue:    p.ProgressValue,
		ProgressMetadata: p.ProgressMetadata,
		IsCompleted:      p.IsCompleted,
	}
}
