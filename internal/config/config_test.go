package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults when no env vars set", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, "postgres", cfg.DBUser)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, DefaultDBName, cfg.DBName)
		assert.Equal(t, DefaultDBMaxConns, cfg.DBMaxConns)
		assert.Equal(t, "test-key", cfg.APIKey)
		assert.Empty(t, cfg.WebhookToken)
		assert.Equal(t, DefaultWorkerCount, cfg.WorkerCount)
		assert.Equal(t, DefaultWorkerQueueSize, cfg.WorkerQueueSize)
		assert.Equal(t, DefaultMaxWriteAttempts, cfg.MaxWriteAttempts)
		assert.Equal(t, DefaultRankingTimeout, cfg.RankingTimeout)
		assert.Equal(t, DefaultEventLogRetentionDays, cfg.EventLogRetentionDays)
		assert.Equal(t, DefaultDeadLetterPath, cfg.DeadLetterPath)
		assert.False(t, cfg.AutoMigrate)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads config from environment variables", func(t *testing.T) {
		clearEnvVars(t)

		t.Setenv("PORT", "3000")
		t.Setenv("API_KEY", "custom-api-key")
		t.Setenv("WEBHOOK_TOKEN", "hook")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DB_USER", "customuser")
		t.Setenv("DB_PASSWORD", "custompass")
		t.Setenv("DB_HOST", "db.example.com")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("DB_NAME", "customdb")
		t.Setenv("DB_MAX_CONNS", "50")
		t.Setenv("AUTO_MIGRATE", "true")
		t.Setenv("RANKING_BASE_URL", "http://wom.local/v2")
		t.Setenv("RANKING_TIMEOUT", "3s")
		t.Setenv("RANKING_RATE_PER_SECOND", "0.5")
		t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
		t.Setenv("WORKER_COUNT", "8")
		t.Setenv("WORKER_QUEUE_SIZE", "1024")
		t.Setenv("MAX_WRITE_ATTEMPTS", "9")
		t.Setenv("DEAD_LETTER_PATH", "/var/lib/bingo/dlq.jsonl")
		t.Setenv("EVENT_LOG_RETENTION_DAYS", "90")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "custom-api-key", cfg.APIKey)
		assert.Equal(t, "hook", cfg.WebhookToken)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "customuser", cfg.DBUser)
		assert.Equal(t, "custompass", cfg.DBPassword)
		assert.Equal(t, "db.example.com", cfg.DBHost)
		assert.Equal(t, "5433", cfg.DBPort)
		assert.Equal(t, "customdb", cfg.DBName)
		assert.Equal(t, 50, cfg.DBMaxConns)
		assert.True(t, cfg.AutoMigrate)
		assert.Equal(t, "http://wom.local/v2", cfg.RankingBaseURL)
		assert.Equal(t, 3*time.Second, cfg.RankingTimeout)
		assert.InDelta(t, 0.5, cfg.RankingRatePerSecond, 1e-9)
		assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.DiscordWebhookURL)
		assert.Equal(t, 8, cfg.WorkerCount)
		assert.Equal(t, 1024, cfg.WorkerQueueSize)
		assert.Equal(t, 9, cfg.MaxWriteAttempts)
		assert.Equal(t, "/var/lib/bingo/dlq.jsonl", cfg.DeadLetterPath)
		assert.Equal(t, 90, cfg.EventLogRetentionDays)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
	})

	t.Run("returns error when API_KEY is missing", func(t *testing.T) {
		clearEnvVars(t)

		cfg, err := Load()

		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "API_KEY")
	})

	invalid := []struct {
		name  string
		key   string
		value string
		msg   string
	}{
		{"non-numeric port", "PORT", "abc", "invalid PORT"},
		{"negative port", "PORT", "-1", "out of range"},
		{"port too large", "PORT", "70000", "out of range"},
		{"zero workers", "WORKER_COUNT", "0", "WORKER_COUNT"},
		{"zero write attempts", "MAX_WRITE_ATTEMPTS", "0", "MAX_WRITE_ATTEMPTS"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv("API_KEY", "test-key")
			t.Setenv(tc.key, tc.value)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{DBUser: "bingo", DBPassword: "p@ss:word", DBHost: "db", DBPort: "5433", DBName: "bingobot"}

	conn := cfg.GetDBConnString()

	assert.Equal(t, "postgres://bingo:p%40ss%3Aword@db:5433/bingobot?sslmode=disable", conn)
}

func TestValidateEnv(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		t.Setenv("ENV_SCHEMA_VERSION", "")

		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENV_SCHEMA_VERSION is not set")
	})

	t.Run("version mismatch", func(t *testing.T) {
		t.Setenv("ENV_SCHEMA_VERSION", "0.9")

		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 1.0, got 0.9")
	})

	t.Run("missing required", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("ENV_SCHEMA_VERSION", ExpectedEnvSchemaVersion)

		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WEBHOOK_TOKEN")
	})

	t.Run("example values produce warnings", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("ENV_SCHEMA_VERSION", ExpectedEnvSchemaVersion)
		t.Setenv("DB_USER", "user")
		t.Setenv("DB_PASSWORD", ExampleDBPassword)
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("DB_NAME", "db")
		t.Setenv("API_KEY", ExampleAPIKey)
		t.Setenv("WEBHOOK_TOKEN", ExampleWebhookToken)

		warnings, err := ValidateEnvWithWarnings()

		require.NoError(t, err)
		assert.Len(t, warnings, 4)
	})
}

func clearEnvVars(t *testing.T) {
	t.Helper()

	envVars := []string{
		"PORT", "API_KEY", "WEBHOOK_TOKEN", "LOG_LEVEL", "LOG_FORMAT", "LOG_DIR",
		"SERVICE_NAME", "VERSION", "ENVIRONMENT",
		"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "DB_MAX_CONNS",
		"AUTO_MIGRATE", "RANKING_BASE_URL", "RANKING_TIMEOUT", "RANKING_RATE_PER_SECOND",
		"DISCORD_WEBHOOK_URL", "WORKER_COUNT", "WORKER_QUEUE_SIZE", "MAX_WRITE_ATTEMPTS",
		"DEAD_LETTER_PATH", "EVENT_LOG_RETENTION_DAYS", "TRUSTED_PROXIES",
	}

	for _, key := range envVars {
		// t.Setenv restores the original value when the test ends
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
