package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/osse101/BingoBot_Go/internal/database"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string
	ServiceName string
	Version     string

	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration
	AutoMigrate       bool

	APIKey             string // guards the admin routes
	WebhookToken       string // shared with plugin clients, empty disables the check
	TrustedProxies     []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	RankingBaseURL       string
	RankingTimeout       time.Duration
	RankingRatePerSecond float64

	DiscordWebhookURL string

	WorkerCount      int
	WorkerQueueSize  int
	MaxWriteAttempts int

	DeadLetterPath        string
	EventLogRetentionDays int
	MaintenanceHourUTC    int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		LogDir:      getEnv("LOG_DIR", "logs"),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", "dev"),

		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", DefaultDBName),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),
		AutoMigrate:       getEnvAsBool("AUTO_MIGRATE", false),

		APIKey:             getEnv("API_KEY", ""),
		WebhookToken:       getEnv("WEBHOOK_TOKEN", ""),
		TrustedProxies:     getEnvAsList("TRUSTED_PROXIES"),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", DefaultRateLimitPerSecond),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", DefaultRateLimitBurst),

		RankingBaseURL:       getEnv("RANKING_BASE_URL", ""),
		RankingTimeout:       getEnvAsDuration("RANKING_TIMEOUT", DefaultRankingTimeout),
		RankingRatePerSecond: getEnvAsFloat("RANKING_RATE_PER_SECOND", DefaultRankingRatePerSecond),

		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),

		WorkerCount:      getEnvAsInt("WORKER_COUNT", DefaultWorkerCount),
		WorkerQueueSize:  getEnvAsInt("WORKER_QUEUE_SIZE", DefaultWorkerQueueSize),
		MaxWriteAttempts: getEnvAsInt("MAX_WRITE_ATTEMPTS", DefaultMaxWriteAttempts),

		DeadLetterPath:        getEnv("DEAD_LETTER_PATH", DefaultDeadLetterPath),
		EventLogRetentionDays: getEnvAsInt("EVENT_LOG_RETENTION_DAYS", DefaultEventLogRetentionDays),
		MaintenanceHourUTC:    getEnvAsInt("MAINTENANCE_HOUR_UTC", DefaultMaintenanceHourUTC),
	}

	portStr := getEnv("PORT", strconv.Itoa(DefaultPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT value: %d out of range", port)
	}
	cfg.Port = port

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("WORKER_COUNT must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.MaxWriteAttempts <= 0 {
		return nil, fmt.Errorf("MAX_WRITE_ATTEMPTS must be positive, got %d", cfg.MaxWriteAttempts)
	}

	return cfg, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return database.ConnString(c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.Environment, "prod")
}

// ValidateEnv checks that all required environment variables are set
// and that the schema version matches expectations
func ValidateEnv() error {
	schemaVersion := os.Getenv("ENV_SCHEMA_VERSION")
	if schemaVersion == "" {
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)", ExpectedEnvSchemaVersion)
	}

	if schemaVersion != ExpectedEnvSchemaVersion {
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, schemaVersion)
	}

	var missing []string
	for _, envVar := range RequiredEnvVars {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// ValidateEnvWithWarnings checks environment variables and returns warnings
// for non-critical issues (like using example values)
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string

	if os.Getenv("DB_PASSWORD") == ExampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if os.Getenv("API_KEY") == ExampleAPIKey {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if os.Getenv("WEBHOOK_TOKEN") == ExampleWebhookToken {
		warnings = append(warnings, "WEBHOOK_TOKEN appears to be using the example value - generate one with: openssl rand -hex 16")
	}
	if os.Getenv("DISCORD_WEBHOOK_URL") == "" {
		warnings = append(warnings, "DISCORD_WEBHOOK_URL is not set - completions will not be announced")
	}

	return warnings, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default when unset or invalid
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a duration such as "30s" or "5m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping empty entries
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
