package config

import "time"

// ExpectedEnvSchemaVersion is the schema version that the application expects
const ExpectedEnvSchemaVersion = "1.0"

// Defaults
const (
	DefaultPort                  = 8080
	DefaultLogLevel              = "info"
	DefaultLogFormat             = "text"
	DefaultEnvironment           = "dev"
	DefaultServiceName           = "bingobot"
	DefaultDBName                = "bingobot"
	DefaultDBMaxConns            = 20
	DefaultDBMaxConnIdleTime     = 5 * time.Minute
	DefaultDBMaxConnLifetime     = time.Hour
	DefaultRankingTimeout        = 10 * time.Second
	DefaultRankingRatePerSecond  = 1.5
	DefaultWorkerCount           = 4
	DefaultWorkerQueueSize       = 256
	DefaultMaxWriteAttempts      = 5
	DefaultDeadLetterPath        = "logs/deadletter.jsonl"
	DefaultEventLogRetentionDays = 30
	DefaultMaintenanceHourUTC    = 4
	DefaultRateLimitPerSecond    = 10.0
	DefaultRateLimitBurst        = 100
)

// Example values shipped in .env.example
const (
	ExampleDBPassword   = "change_this_secure_password"
	ExampleAPIKey       = "generate_with_openssl_rand_hex_32"
	ExampleWebhookToken = "generate_with_openssl_rand_hex_16"
)

// RequiredEnvVars lists all environment variables that must be set
var RequiredEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
	"DB_NAME",
	"API_KEY",
	"WEBHOOK_TOKEN",
}
