package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Path and query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidPathParam  = "Invalid %s"
	ErrMsgInvalidSince      = "Invalid 'since' timestamp format (use RFC3339)"
	ErrMsgInvalidUntil      = "Invalid 'until' timestamp format (use RFC3339)"
	ErrMsgInvalidLimit      = "Invalid 'limit' (must be 1-1000)"

	// Webhook error messages
	ErrMsgPayloadMissing  = "Missing payload_json form field"
	ErrMsgPayloadTooLarge = "Payload too large"
	ErrMsgQueueFull       = "Event queue is full. Please retry later."

	// Read error messages
	ErrMsgGetProgressFailed = "Failed to retrieve tile progress"
	ErrMsgGetEventsFailed   = "Failed to retrieve events"
	ErrMsgGetBoardFailed    = "Failed to retrieve board"
)

// Webhook response statuses
const (
	StatusQueued  = "queued"
	StatusIgnored = "ignored"
)
