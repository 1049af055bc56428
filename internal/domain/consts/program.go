// Package consts holds various global, unchanging values.
package consts

// Program identity.
const (
	ProgramName = "fetcharr"
	DefaultPort = "8827"
)

// Artifact constraints.
const (
	MinArtifactBytes int64 = 1000
	ArtifactPrefix         = "download_"
	MaxTitleLength         = 100
	DiagnosticSnippetLen   = 500
)

// Request defaults.
const (
	DefaultRateLimit   = 10
	DefaultGlobalRPS   = 5.0
	DefaultGlobalBurst = 10
)

// Extractor default location.
const (
	DefaultYTDLPPath = "/usr/local/bin/yt-dlp"
)

// BotDetectionPatterns are stderr fragments signaling the platform refused an automated client.
var BotDetectionPatterns = [...]string{
	"confirm you're not a bot",
	"confirm you are not a bot",
	"not a robot",
	"sign in to confirm",
	"http error 429",
	"rate-limit reached",
	"login required",
}

// FormatUnsupportedPatterns are stderr fragments signaling the format expression cannot be satisfied.
var FormatUnsupportedPatterns = [...]string{
	"requested format is not available",
	"no video formats found",
}
