// Package command holds extractor and transcoder flag literals.
package command

// Binaries
const (
	YTDLP  = "yt-dlp"
	FFmpeg = "ffmpeg"
)

// General
const (
	CookiePath       = "--cookies"
	Proxy            = "--proxy"
	UserAgent        = "--user-agent"
	Output           = "-o"
	FFmpegLocation   = "--ffmpeg-location"
	ExtractorArgs    = "--extractor-args"
	NoCheckCert      = "--no-check-certificate"
	NoWarnings       = "--no-warnings"
	IgnoreErrors     = "--ignore-errors"
	ForceOverwrites  = "--force-overwrites"
	NoPlaylist       = "--no-playlist"
	EndOfOptions     = "--"
	Version          = "--version"
	Update           = "-U"
	FFmpegVersion    = "-version"
	AndroidClientArg = "youtube:player_client=android"
)

// Format selection
const (
	Format               = "-f"
	ExtractAudio         = "-x"
	AudioFormat          = "--audio-format"
	AudioQuality         = "--audio-quality"
	AudioQualityBest     = "0"
	YtDLPOutputExtension = "--merge-output-format"
	BestAudio            = "bestaudio"
	SimpleVideoFormat    = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
)

// JSON only
const (
	SkipVideo  = "--skip-download"
	OutputJSON = "-J"
	DumpJSON   = "--dump-json"
	PrintJSON  = "--print-json"
)
