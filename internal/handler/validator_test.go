package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_Source(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"dink", false},
		{"rune-lite", false},
		{"wom_2", false},
		{"a", false},
		{strings.Repeat("a", 32), false},

		{strings.Repeat("a", 33), true},
		{"", true},
		{"DINK", true},
		{"d!nk", true},
		{"-dink", true},
		{"../dink", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			err := ValidateStruct(WebhookRequest{Source: tt.source})
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	err := ValidateStruct(WebhookRequest{Source: "D!NK"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"source": "Invalid source name"}, FormatValidationError(err))

	err = ValidateStruct(WebhookRequest{})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"source": "This field is required"}, FormatValidationError(err))

	assert.Nil(t, FormatValidationError(nil))
	assert.Equal(t, map[string]string{"error": "Invalid request format"}, FormatValidationError(assert.AnError))
}

func TestFormatValidationError_UsesJSONNamesAndParams(t *testing.T) {
	type tierRequest struct {
		Tier  int    `json:"tier" validate:"gt=0"`
		Label string `json:"label,omitempty" validate:"oneof=bronze silver gold"`
	}

	err := ValidateStruct(tierRequest{Tier: 0, Label: "platinum"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"tier":  "Must be greater than 0",
		"label": "Must be one of: bronze silver gold",
	}, FormatValidationError(err))
}
