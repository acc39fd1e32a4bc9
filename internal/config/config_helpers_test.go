package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"unset uses default", "", false, 42},
		{"valid integer", "100", true, 100},
		{"invalid integer", "not-a-number", true, 42},
		{"negative", "-10", true, -10},
		{"zero", "0", true, 0},
		{"float rejected", "42.5", true, 42},
		{"empty string", "", true, 42},
		{"surrounding spaces", " 7 ", true, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_INT_VAR", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsInt("TEST_INT_VAR", 42))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	def := 5 * time.Minute
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"10m", 10 * time.Minute},
		{"30s", 30 * time.Second},
		{"2h", 2 * time.Hour},
		{"1h30m45s", time.Hour + 30*time.Minute + 45*time.Second},
		{"500ms", 500 * time.Millisecond},
		{"not-a-duration", def},
		{"100", def},
		{"", def},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_DURATION_VAR", tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION_VAR", def))
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	for value, want := range map[string]bool{
		"true":  true,
		"1":     true,
		"FALSE": false,
		"0":     false,
		"maybe": true,
		"":      true,
	} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", value)
			assert.Equal(t, want, getEnvAsBool("TEST_BOOL_VAR", true))
		})
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "2.5")
	assert.InDelta(t, 2.5, getEnvAsFloat("TEST_FLOAT_VAR", 1), 1e-9)

	t.Setenv("TEST_FLOAT_VAR", "fast")
	assert.InDelta(t, 1.0, getEnvAsFloat("TEST_FLOAT_VAR", 1), 1e-9)
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST_VAR", " 10.0.0.1, ,10.0.0.2 ,")
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, getEnvAsList("TEST_LIST_VAR"))

	t.Setenv("TEST_LIST_VAR", "")
	assert.Nil(t, getEnvAsList("TEST_LIST_VAR"))
}
