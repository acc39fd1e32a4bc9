package bootstrap

const (
	DirPermission     = 0755
	LogFilePermission = 0644
)

// Session log files are named session_<timestamp>.log; the newest
// LogFileRetentionCount older sessions survive startup
const (
	LogFileTimestampFormat = "2006-01-02_15-04-05"
	LogFileNamePattern     = "session_%s.log"
	LogFileExtension       = ".log"
	LogFileRetentionCount  = 9
)

const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingBingoBot    = "Starting BingoBot"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

const (
	LogMsgImportingBoard    = "Importing board definition"
	LogMsgBoardImported     = "Board imported"
	ErrMsgFailedLoadBoard   = "failed to load board definition"
	ErrMsgFailedImportBoard = "failed to import board"
)

// Completion subscribers
const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgEventLoggerInitialized     = "Event logger initialized"
	LogMsgDiscordNotifierInitialized = "Discord notifier initialized"
	LogMsgDiscordNotifierDisabled    = "Discord notifier disabled, no webhook configured"
	ErrMsgFailedRegisterMetrics      = "failed to register metrics collector"
	ErrMsgFailedSubscribeEventLogger = "failed to subscribe event logger"
	ErrMsgFailedCreateNotifier       = "failed to create discord notifier"
)

// Shutdown runs server, worker pool, maintenance, bingo service, publisher
const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgDrainingWorkerPool         = "Draining event worker pool..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgMaintenanceShutdownFailed  = "Maintenance worker shutdown failed"
	LogMsgBingoShutdownFailed        = "Bingo service shutdown failed"
)
