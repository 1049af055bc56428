// Package config builds the immutable runtime settings from viper.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"fetcharr/internal/domain/command"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/keys"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/domain/paths"
	"fetcharr/internal/models"

	"github.com/spf13/viper"
)

// Ledger backends.
const (
	LedgerSQLite = "sqlite"
	LedgerRedis  = "redis"
)

// Settings is the process-wide configuration.
//
// Built once at startup and passed by value or pointer to constructors; never mutated afterward.
type Settings struct {
	YTDLPPath        string
	FFmpegPath       string
	TempDir          string
	LogDir           string
	DBPath           string
	CookiesFile      string
	Proxy            string
	UserAgents       []string
	AllowedDomains   []string
	Profiles         map[models.FormatKey]models.FormatProfile
	InfoTimeout      time.Duration
	DownloadTimeout  time.Duration
	MinArtifactBytes int64

	InfoNative  bool
	InfoMirrors bool
	MirrorHosts []string

	RateLimit     int
	RateWindow    time.Duration
	LedgerBackend string
	RedisAddr     string
	GlobalRPS     float64
	GlobalBurst   int

	ListenAddr    string
	TrustProxy    bool
	ArtifactTTL   time.Duration
	BlockCooldown time.Duration

	DebugLevel int
}

// Default returns settings usable without any flags, mainly for tests.
func Default() Settings {
	return Settings{
		YTDLPPath:        command.YTDLP,
		TempDir:          filepath.Join("/tmp", consts.ProgramName),
		UserAgents:       DefaultUserAgents(),
		Profiles:         models.DefaultFormatProfiles(),
		InfoTimeout:      consts.DefaultInfoTimeout,
		DownloadTimeout:  consts.DefaultDownloadTimeout,
		MinArtifactBytes: consts.MinArtifactBytes,
		RateLimit:        consts.DefaultRateLimit,
		RateWindow:       consts.DefaultRateWindow,
		LedgerBackend:    LedgerSQLite,
		GlobalRPS:        consts.DefaultGlobalRPS,
		GlobalBurst:      consts.DefaultGlobalBurst,
		ListenAddr:       ":" + consts.DefaultPort,
		ArtifactTTL:      consts.DefaultArtifactTTL,
	}
}

// FromViper reads every bound key into a Settings value.
func FromViper() (Settings, error) {
	s := Default()

	s.YTDLPPath = resolveBinary(viper.GetString(keys.YTDLPPath), command.YTDLP)
	s.FFmpegPath = resolveBinary(viper.GetString(keys.FFmpegPath), command.FFmpeg)

	if dir := viper.GetString(keys.TempDir); dir != "" {
		s.TempDir = dir
	} else if paths.DefaultTempDir != "" {
		s.TempDir = paths.DefaultTempDir
	}
	abs, err := filepath.Abs(s.TempDir)
	if err != nil {
		return s, fmt.Errorf("invalid temp directory %q: %w", s.TempDir, err)
	}
	s.TempDir = filepath.Clean(abs)

	s.LogDir = viper.GetString(keys.LogDir)
	s.DBPath = viper.GetString(keys.DBPath)
	if s.DBPath == "" {
		s.DBPath = paths.DBFilePath
	}
	s.CookiesFile = viper.GetString(keys.CookiesFile)
	if s.CookiesFile != "" {
		if _, err := os.Stat(s.CookiesFile); err != nil {
			logger.Pl.W("Ignoring cookies file %q: %v", s.CookiesFile, err)
			s.CookiesFile = ""
		}
	}
	s.Proxy = viper.GetString(keys.Proxy)

	if uas := trimAll(viper.GetStringSlice(keys.UserAgents)); len(uas) > 0 {
		s.UserAgents = uas
	}
	s.AllowedDomains = trimAll(viper.GetStringSlice(keys.AllowedDomains))

	if f := viper.GetString(keys.ProfilesFile); f != "" {
		profiles, err := LoadProfiles(f, s.Profiles)
		if err != nil {
			return s, err
		}
		s.Profiles = profiles
	}

	if d := viper.GetDuration(keys.InfoTimeout); d > 0 {
		s.InfoTimeout = d
	}
	if d := viper.GetDuration(keys.DownloadTimeout); d > 0 {
		s.DownloadTimeout = d
	}
	if n := viper.GetInt64(keys.MinArtifactBytes); n > 0 {
		s.MinArtifactBytes = n
	}

	s.InfoNative = viper.GetBool(keys.InfoNative)
	s.InfoMirrors = viper.GetBool(keys.InfoMirrors)
	s.MirrorHosts = trimAll(viper.GetStringSlice(keys.MirrorHosts))

	if viper.IsSet(keys.RateLimit) {
		s.RateLimit = max(viper.GetInt(keys.RateLimit), 0)
	}
	if d := viper.GetDuration(keys.RateWindow); d > 0 {
		s.RateWindow = d
	}
	if b := strings.ToLower(viper.GetString(keys.LedgerBackend)); b != "" {
		s.LedgerBackend = b
	}
	s.RedisAddr = viper.GetString(keys.RedisAddr)
	if viper.IsSet(keys.GlobalRPS) {
		s.GlobalRPS = max(viper.GetFloat64(keys.GlobalRPS), 0)
	}
	if n := viper.GetInt(keys.GlobalBurst); n > 0 {
		s.GlobalBurst = n
	}

	if a := viper.GetString(keys.ListenAddr); a != "" {
		s.ListenAddr = a
	}
	s.TrustProxy = viper.GetBool(keys.TrustProxy)
	if d := viper.GetDuration(keys.ArtifactTTL); d > 0 {
		s.ArtifactTTL = d
	}
	s.BlockCooldown = viper.GetDuration(keys.BlockCooldown)
	s.DebugLevel = viper.GetInt(keys.DebugLevel)

	return s, s.Validate()
}

// Validate checks settings which would otherwise fail deep inside a request.
func (s Settings) Validate() error {
	switch s.LedgerBackend {
	case LedgerSQLite:
	case LedgerRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("ledger backend %q requires --%s", LedgerRedis, keys.RedisAddr)
		}
	default:
		return fmt.Errorf("unknown ledger backend %q (want %q or %q)", s.LedgerBackend, LedgerSQLite, LedgerRedis)
	}
	if len(s.UserAgents) == 0 {
		return fmt.Errorf("at least one user agent is required")
	}
	if len(s.Profiles) == 0 {
		return fmt.Errorf("no format profiles configured")
	}
	if s.TempDir == "" || s.TempDir == "/" {
		return fmt.Errorf("refusing to use %q as temp directory", s.TempDir)
	}
	return nil
}

// Profile returns the profile for key.
func (s Settings) Profile(key models.FormatKey) (models.FormatProfile, bool) {
	p, ok := s.Profiles[key]
	return p, ok
}

// resolveBinary prefers the configured path, then the default install location, then PATH.
func resolveBinary(configured, name string) string {
	if configured != "" {
		return configured
	}
	if name == command.YTDLP {
		if p, err := exec.LookPath(consts.DefaultYTDLPPath); err == nil {
			return p
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	logger.Pl.D(1, "Binary %q not found in PATH, using bare name", name)
	if name == command.FFmpeg {
		return ""
	}
	return name
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
