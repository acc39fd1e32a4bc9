package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       LogLevelInfo,
		Format:      LogFormatJSON,
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}

	InitLoggerWithWriter(config, &buf)

	Info("tile completed", "team_id", 7, "tile_id", 42)

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if logEntry["service"] != "test-service" {
		t.Errorf("Expected service=test-service, got %v", logEntry["service"])
	}
	if logEntry["environment"] != "test" {
		t.Errorf("Expected environment=test, got %v", logEntry["environment"])
	}
	if logEntry["msg"] != "tile completed" {
		t.Errorf("Expected msg='tile completed', got %v", logEntry["msg"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level=INFO, got %v", logEntry["level"])
	}
	if logEntry["tile_id"] != float64(42) {
		t.Errorf("Expected tile_id=42, got %v", logEntry["tile_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: LogLevelWarn, Format: LogFormatText}, &buf)

	Debug("hidden")
	Info("hidden")
	Warn("ranking lookup failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "ranking lookup failed") {
		t.Errorf("Expected warn message, got %q", out)
	}
}

func TestRequestIDContext(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: LogLevelInfo, Format: LogFormatJSON}, &buf)

	ctx := WithRequestID(context.Background(), "test-req-123")

	if got := GetRequestID(ctx); got != "test-req-123" {
		t.Errorf("Expected request_id=test-req-123, got %s", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("Expected empty request id, got %s", got)
	}

	FromContext(ctx).Info("with id")
	if !strings.Contains(buf.String(), `"request_id":"test-req-123"`) {
		t.Errorf("Expected request_id attribute, got %s", buf.String())
	}
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		env       string
		level     string
		wantLevel string
		wantSrc   bool
	}{
		{"dev", "debug", "DEBUG", true},
		{"Development", "warning", "WARN", true},
		{"prod", "info", "INFO", false},
		{"staging", "verbose", "INFO", false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := NewConfig(tt.level, LogFormatJSON, "bingo-bot", "1.2.0", tt.env)
			if got := cfg.LogLevel().String(); got != tt.wantLevel {
				t.Errorf("LogLevel() = %s, want %s", got, tt.wantLevel)
			}
			if cfg.AddSource != tt.wantSrc {
				t.Errorf("AddSource = %v, want %v", cfg.AddSource, tt.wantSrc)
			}
			if !cfg.IsJSON() {
				t.Error("expected JSON format")
			}
		})
	}
}

func TestBaseAttributes_SkipsEmpty(t *testing.T) {
	attrs := Config{ServiceName: "bingo-bot", Environment: "test"}.BaseAttributes()
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %v", attrs)
	}
	if attrs[0].Key != AttrKeyService || attrs[1].Key != AttrKeyEnvironment {
		t.Errorf("unexpected attributes %v", attrs)
	}
}
