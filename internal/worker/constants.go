package worker

import "time"

// Pool defaults
const (
	DefaultWorkerCount = 4
	DefaultQueueSize   = 256
)

// Maintenance defaults
const (
	DefaultMaintenanceHourUTC = 4
	DefaultDedupRetention     = 30 * 24 * time.Hour
)

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// LogMsgWorkerQueueFull is logged when a job is refused because the queue is full
const LogMsgWorkerQueueFull = "Worker queue full, job rejected"

// ============================================================================
// Log Messages - Maintenance Worker
// ============================================================================

// Log messages for maintenance worker operations
const (
	LogMsgMaintenanceScheduled       = "Maintenance scheduled"
	LogMsgMaintenanceJobFailed       = "Maintenance job failed"
	LogMsgMaintenanceJobCompleted    = "Maintenance job completed"
	LogMsgMaintenanceShuttingDown    = "Shutting down maintenance worker"
	LogMsgMaintenanceShutdownTimeout = "Maintenance worker shutdown timeout, a run may still be in progress"
	LogMsgRecordsPruned              = "Expired records pruned"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
