package domain

import (
	"encoding/json"
	"fmt"
)

type requirementEnvelope struct {
	Type RequirementType `json:"type"`
}

// UnmarshalRequirement decodes a tagged requirement definition. Unrecognized
// tags decode to UnknownRequirement so stored tiles always load.
func UnmarshalRequirement(data []byte) (Requirement, error) {
	var env requirementEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequirement, err)
	}

	switch env.Type {
	case RequirementItemDrop:
		return decodeRequirement[ItemDropRequirement](data)
	case RequirementPet:
		return decodeRequirement[PetRequirement](data)
	case RequirementValueDrop:
		return decodeRequirement[ValueDropRequirement](data)
	case RequirementSpeedrun:
		return decodeRequirement[SpeedrunRequirement](data)
	case RequirementExperience:
		return decodeRequirement[ExperienceRequirement](data)
	case RequirementBAGambles:
		return decodeRequirement[BAGamblesRequirement](data)
	case RequirementChat:
		return decodeRequirement[ChatRequirement](data)
	case RequirementPuzzle:
		return decodeRequirement[PuzzleRequirement](data)
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return UnknownRequirement{RawType: string(env.Type), Raw: raw}, nil
	}
}

func decodeRequirement[T Requirement](data []byte) (Requirement, error) {
	var req T
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequirement, err)
	}
	return req, nil
}

func (r ItemDropRequirement) MarshalJSON() ([]byte, error) {
	type alias ItemDropRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r PetRequirement) MarshalJSON() ([]byte, error) {
	type alias PetRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r ValueDropRequirement) MarshalJSON() ([]byte, error) {
	type alias ValueDropRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r SpeedrunRequirement) MarshalJSON() ([]byte, error) {
	type alias SpeedrunRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r ExperienceRequirement) MarshalJSON() ([]byte, error) {
	type alias ExperienceRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r BAGamblesRequirement) MarshalJSON() ([]byte, error) {
	type alias BAGamblesRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r ChatRequirement) MarshalJSON() ([]byte, error) {
	type alias ChatRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

func (r PuzzleRequirement) MarshalJSON() ([]byte, error) {
	type alias PuzzleRequirement
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{r.Type(), alias(r)})
}

// UnmarshalJSON decodes the hidden requirement through the tagged codec
func (r *PuzzleRequirement) UnmarshalJSON(data []byte) error {
	var raw struct {
		HiddenRequirement json.RawMessage `json:"hidden_requirement"`
		DisplayName       string          `json:"display_name"`
		Description       string          `json:"description"`
		Hint              string          `json:"hint"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.DisplayName = raw.DisplayName
	r.Description = raw.Description
	r.Hint = raw.Hint
	r.HiddenRequirement = nil

	if len(raw.HiddenRequirement) == 0 || string(raw.HiddenRequirement) == "null" {
		return nil
	}
	hidden, err := UnmarshalRequirement(raw.HiddenRequirement)
	if err != nil {
		return fmt.Errorf("hidden requirement: %w", err)
	}
	r.HiddenRequirement = hidden
	return nil
}

// MarshalJSON writes back the definition exactly as it was read
func (r UnknownRequirement) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return json.Marshal(requirementEnvelope{Type: RequirementType(r.RawType)})
	}
	return r.Raw, nil
}

// RequirementList is an ordered list of requirements with a tagged JSON codec
type RequirementList []Requirement

// UnmarshalJSON decodes each element through UnmarshalRequirement
func (l *RequirementList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequirement, err)
	}
	out := make(RequirementList, 0, len(raws))
	for i, raw := range raws {
		req, err := UnmarshalRequirement(raw)
		if err != nil {
			return fmt.Errorf("requirement %d: %w", i, err)
		}
		out = append(out, req)
	}
	*l = out
	return nil
}
