package eventlog

const (
	// DefaultQueryLimit applies when a query sets no limit
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

// Payload fields lifted into their own columns
const (
	PayloadKeyTeamID = "team_id"
	PayloadKeyTileID = "tile_id"
)

const (
	LogMsgEventPayloadUndecodable = "Completion payload could not be decoded, not logged"
	LogMsgFailedToLogEvent        = "Failed to append completion to event log"
	LogMsgEventLogged             = "Completion appended to event log"
)

const (
	LogFieldType   = "type"
	LogFieldTeamID = "team_id"
	LogFieldTileID = "tile_id"
	LogFieldError  = "error"
)
