package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Ingestion metric names
const (
	MetricNameGameEventsIngested      = "bingo_game_events_ingested_total"
	MetricNameGameEventsDropped       = "bingo_game_events_dropped_total"
	MetricNameEventProcessingDuration = "bingo_event_processing_duration_seconds"
)

// Progress metric names
const (
	MetricNameProgressCalculations   = "bingo_progress_calculations_total"
	MetricNameProgressWriteConflicts = "bingo_progress_write_conflicts_total"
	MetricNameRequirementCompletions = "bingo_requirement_completions_total"
	MetricNameTierCompletions        = "bingo_tier_completions_total"
	MetricNameTileCompletions        = "bingo_tile_completions_total"
)

// Ranking service metric names
const (
	MetricNameRankingLookups = "bingo_ranking_lookups_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Ingestion metric help text
const (
	HelpTextGameEventsIngested      = "Total number of game events accepted from telemetry sources"
	HelpTextGameEventsDropped       = "Total number of telemetry payloads dropped before processing"
	HelpTextEventProcessingDuration = "Time spent applying one game event to all matching requirements"
)

// Progress metric help text
const (
	HelpTextProgressCalculations   = "Total number of requirement progress calculations"
	HelpTextProgressWriteConflicts = "Total number of optimistic progress write conflicts"
	HelpTextRequirementCompletions = "Total number of requirements completed"
	HelpTextTierCompletions        = "Total number of requirement tiers reached"
	HelpTextTileCompletions        = "Total number of tiles completed"
)

// Ranking service metric help text
const (
	HelpTextRankingLookups = "Total number of ranking service experience lookups"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod          = "method"
	LabelPath            = "path"
	LabelStatus          = "status"
	LabelType            = "type"
	LabelSource          = "source"
	LabelEventType       = "event_type"
	LabelReason          = "reason"
	LabelRequirementType = "requirement_type"
	LabelResult          = "result"
)

// Drop reasons
const (
	ReasonUnknownSource = "unknown_source"
	ReasonInvalid       = "invalid"
	ReasonIrrelevant    = "irrelevant"
	ReasonDuplicate     = "duplicate"
	ReasonNoTeam        = "no_team"
)

// Ranking lookup results
const (
	ResultHit      = "cache_hit"
	ResultFetched  = "fetched"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ProcessingBuckets covers event processing, which includes ranking lookups on experience events
var ProcessingBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadUndecodable = "Event payload could not be decoded"
	LogMsgMetricsRecorded         = "Metrics recorded for event"
)

// UnmatchedRoute labels requests that matched no chi route
const UnmatchedRoute = "unmatched"
