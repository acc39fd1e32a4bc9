package database

import "time"

// Database Connection Pool Constants
const (
	// DefaultMinConnections is the minimum number of connections to maintain in the pool
	DefaultMinConnections = 2

	// DefaultMaxConnections is used when DB_MAX_CONNS is not set
	DefaultMaxConnections = 20

	// DefaultMaxConnIdleTime closes connections idle for longer than this
	DefaultMaxConnIdleTime = 5 * time.Minute

	// DefaultMaxConnLifetime recycles connections older than this
	DefaultMaxConnLifetime = time.Hour
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToMigrate         = "failed to run migrations"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
)
