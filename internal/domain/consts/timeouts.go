package consts

import "time"

// Extractor timeouts
const (
	DefaultInfoTimeout     = 90 * time.Second
	DefaultDownloadTimeout = 5 * time.Minute
	VersionCheckTimeout    = 15 * time.Second
	UpdateTimeout          = 2 * time.Minute
	KillGracePeriod        = 3 * time.Second
)

// Network timeouts
const (
	HTTPClientTimeout  = 10 * time.Second
	MirrorTimeout      = 15 * time.Second
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 30 * time.Minute
	ShutdownTimeout    = 10 * time.Second
)

// Housekeeping
const (
	HeartbeatInterval  = 30 * time.Second
	StaleHeartbeat     = 2 * time.Minute
	JanitorInterval    = 5 * time.Minute
	DefaultArtifactTTL = 30 * time.Minute
	DefaultRateWindow  = time.Hour
)
