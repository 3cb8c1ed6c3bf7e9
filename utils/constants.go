package utils

import "time"

// General Configuration
const (
	BotColor      = 0x5865F2
	BotFooterText = "High Roller Club Derby"
	BotFooterIcon = "https://res.cloudinary.com/dfoeiotel/image/upload/v1753043816/HRC-final_ymqwfy.png"
	DerbyThumbURL = "https://res.cloudinary.com/dfoeiotel/image/upload/v1754026209/HR2_dacwe3.png"
)

// Embed colors
const (
	ColorError    = 0xE74C3C
	ColorBetting  = 0x3498DB
	ColorRacing   = 0x8E44AD
	ColorFinished = 0xF1C40F
	ColorNeutral  = 0xF39C12
)

// Race rendering
const (
	// DefaultRenderInterval bounds how often a live race message is edited.
	// Discord rate-limits message edits, so frames between renders are skipped.
	DefaultRenderInterval = 800 * time.Millisecond
	TrackCells            = 20
)

// Discord embed limits, in characters
const (
	EmbedTitleLimit       = 256
	EmbedDescriptionLimit = 4096
	EmbedFieldNameLimit   = 256
	EmbedFieldValueLimit  = 1024
	EmbedFooterLimit      = 2048
	EmbedFieldCountLimit  = 25
)

// UI Messages
const (
	ResetMessage     = "The table has been cleared. Add horses with `/derby add` to start again."
	RaceStartMessage = "And they're off!"
)
