package discord

// Embed colors
const (
	ColorRequirement = 0x2ecc71 // Green
	ColorTier        = 0x3498db // Blue
	ColorTile        = 0xf1c40f // Gold
)

// Message templates for completion announcements
const (
	TitleRequirementCompleted = "✅ Requirement Complete"
	TitleTierCompleted        = "📈 Tier Reached"
	TitleTileCompleted        = "🏆 Tile Complete"
	TitlePuzzleSolved         = "🧩 Puzzle Solved"

	MsgRequirementCompleted = "**%s** completed **%s** on **%s** (%d/%d)"
	MsgTierCompleted        = "**%s** reached tier %d of **%s** on **%s**"
	MsgTileCompleted        = "**%s** finished tile **%s**"
	MsgPuzzleSolved         = "**%s** solved **%s** on **%s**"

	FooterTeam = "Team %d"

	// DefaultUsername is the name completion announcements are posted under
	DefaultUsername = "Bingo"
)

// Log messages
const (
	LogMsgNotificationFailed = "Failed to send Discord notification"
	LogMsgNotificationSent   = "Discord notification sent"
	LogMsgPayloadUndecodable = "Completion payload could not be decoded, skipping notification"
)
