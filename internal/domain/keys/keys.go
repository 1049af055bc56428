// Package keys holds the viper keys for fetcharr settings.
package keys

// Program
const (
	ConfigFile = "config"
	DebugLevel = "debug"
	LogDir     = "log-dir"
	DBPath     = "db-path"
)

// Extractor
const (
	YTDLPPath        = "ytdlp-path"
	FFmpegPath       = "ffmpeg-path"
	TempDir          = "temp-dir"
	CookiesFile      = "cookies-file"
	Proxy            = "proxy"
	UserAgents       = "user-agents"
	ProfilesFile     = "profiles-file"
	InfoTimeout      = "info-timeout"
	DownloadTimeout  = "download-timeout"
	MinArtifactBytes = "min-artifact-bytes"
	AllowedDomains   = "allowed-domains"
)

// Info providers
const (
	InfoNative  = "info-native"
	InfoMirrors = "info-mirrors"
	MirrorHosts = "mirror-hosts"
)

// Server
const (
	ListenAddr    = "listen"
	TrustProxy    = "trust-proxy"
	ArtifactTTL   = "artifact-ttl"
	BlockCooldown = "block-cooldown"
)

// Rate limiting
const (
	RateLimit     = "rate-limit"
	RateWindow    = "rate-window"
	LedgerBackend = "ledger"
	RedisAddr     = "redis-addr"
	GlobalRPS     = "global-rps"
	GlobalBurst   = "global-burst"
)

// Per-command
const (
	Format       = "format"
	OutDir       = "out"
	CookieDomain = "domain"
)
