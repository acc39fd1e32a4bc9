package requirement

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("chatpattern", validateChatPattern)
		validate = v
	})
	return validate
}

func validateChatPattern(fl validator.FieldLevel) bool {
	_, err := compilePattern(fl.Field().String())
	return err == nil
}

// Validate checks an authored requirement before it is stored on a tile.
// Unknown kinds are rejected here even though they load without error at runtime.
func Validate(req domain.Requirement) error {
	if req == nil {
		return fmt.Errorf("%w: missing definition", domain.ErrInvalidRequirement)
	}

	switch r := req.(type) {
	case domain.UnknownRequirement:
		return fmt.Errorf("%w: unknown type %q", domain.ErrInvalidRequirement, r.RawType)
	case domain.PuzzleRequirement:
		if err := getValidator().Struct(r); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRequirement, err)
		}
		if _, nested := r.HiddenRequirement.(domain.PuzzleRequirement); nested {
			return fmt.Errorf("%w: puzzle cannot hide another puzzle", domain.ErrInvalidRequirement)
		}
		if err := Validate(r.HiddenRequirement); err != nil {
			return fmt.Errorf("hidden requirement: %w", err)
		}
		return nil
	case domain.ItemDropRequirement:
		if err := validateItems(r.Items); err != nil {
			return err
		}
	}

	if err := getValidator().Struct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequirement, err)
	}
	if tiered, ok := req.(domain.Tiered); ok {
		if err := validateTiers(tiered.TierThresholds(), req.Aggregation()); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(items []domain.ItemTarget) error {
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if seen[item.ItemID] {
			return fmt.Errorf("%w: item %d listed twice", domain.ErrInvalidRequirement, item.ItemID)
		}
		seen[item.ItemID] = true
	}
	return nil
}

// validateTiers requires thresholds to progress strictly in the policy's better direction
func validateTiers(tiers []int64, policy domain.AggregationPolicy) error {
	for i := 1; i < len(tiers); i++ {
		ordered := tiers[i] > tiers[i-1]
		if policy.LowerIsBetter() {
			ordered = tiers[i] < tiers[i-1]
		}
		if !ordered {
			return fmt.Errorf("%w: tier %d out of order", domain.ErrInvalidRequirement, i)
		}
	}
	return nil
}
