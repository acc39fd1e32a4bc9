package domain

import (
	"encoding/json"
	"fmt"
)

type progressEnvelope struct {
	RequirementType RequirementType `json:"requirement_type"`
}

// UnmarshalProgressMetadata decodes a stored metadata document by its requirement_type tag
func UnmarshalProgressMetadata(data []byte) (ProgressMetadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var env progressEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode progress metadata: %w", err)
	}

	var meta ProgressMetadata
	switch env.RequirementType {
	case RequirementItemDrop:
		meta = &ItemDropProgress{}
	case RequirementPet:
		meta = &PetProgress{}
	case RequirementValueDrop:
		meta = &ValueDropProgress{}
	case RequirementSpeedrun:
		meta = &SpeedrunProgress{}
	case RequirementExperience:
		meta = &ExperienceProgress{}
	case RequirementBAGambles:
		meta = &BAGamblesProgress{}
	case RequirementChat:
		meta = &ChatProgress{}
	case RequirementPuzzle:
		meta = &PuzzleProgress{}
	default:
		meta = &InertProgress{}
	}

	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("decode %s progress metadata: %w", env.RequirementType, err)
	}
	return meta, nil
}

// UnmarshalJSON decodes the nested metadata through the tagged codec
func (p *PuzzleProgress) UnmarshalJSON(data []byte) error {
	type alias PuzzleProgress
	var raw struct {
		alias
		HiddenProgressMetadata json.RawMessage `json:"hidden_progress_metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = PuzzleProgress(raw.alias)
	hidden, err := UnmarshalProgressMetadata(raw.HiddenProgressMetadata)
	if err != nil {
		return fmt.Errorf("hidden progress: %w", err)
	}
	p.HiddenProgressMetadata = hidden
	return nil
}

// UnmarshalJSON decodes a result whose metadata is a tagged document
func (r *ProgressResult) UnmarshalJSON(data []byte) error {
	type alias ProgressResult
	var raw struct {
		alias
		ProgressMetadata json.RawMessage `json:"progress_metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ProgressResult(raw.alias)
	meta, err := UnmarshalProgressMetadata(raw.ProgressMetadata)
	if err != nil {
		return err
	}
	r.ProgressMetadata = meta
	return nil
}
