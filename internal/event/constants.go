package event

import "time"

// EventSchemaVersion is stamped on every published event
const EventSchemaVersion = "1.0"

const (
	// RetryQueueBufferSize bounds failed events awaiting redelivery; overflow
	// goes straight to the dead-letter file
	RetryQueueBufferSize = 1000

	RetryInitialDelay = 2 * time.Second
	RetryMaxAttempts  = 5

	// MaxRetryDelay caps exponential backoff
	MaxRetryDelay = time.Minute

	DeadLetterFilePermissions = 0644
)

const (
	LogMsgEventPublishFailed    = "Completion event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event dead-lettered"
	LogMsgDeadLetterWriteFailed = "Failed to write dead-letter entry"
	LogMsgEventDeadLettered     = "Event dead-lettered"
	LogMsgEventRetryExhausted   = "Event retries exhausted"
	LogMsgEventRetryFailed      = "Event retry failed"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgQueueDrainedShutdown  = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"

	LogMsgHandlerErrorFormat = "%d handler(s) failed for %s: %v"
)

// CalculateRetryDelay doubles baseDelay for each attempt after the first,
// capped at MaxRetryDelay
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	return delay
}
