package cfg

import (
	"fmt"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/keys"
	"fetcharr/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds each named flag in fs to the viper key of the same name.
func bindFlags(fs *pflag.FlagSet, names ...string) error {
	for _, n := range names {
		f := fs.Lookup(n)
		if f == nil {
			return fmt.Errorf("flag %q is not defined", n)
		}
		if err := viper.BindPFlag(n, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", n, err)
		}
	}
	return nil
}

// initProgramFlags initializes program settings into Viper.
func initProgramFlags(cmd *cobra.Command) error {
	pf := cmd.PersistentFlags()

	pf.StringP(keys.ConfigFile, "c", "", "Config file (any format viper reads: yaml, toml, json...)")
	pf.IntP(keys.DebugLevel, "d", 0, "Debug level (0-5)")
	pf.String(keys.LogDir, "", "Directory for the rotating log file (default ~/.fetcharr)")

	return bindFlags(pf, keys.ConfigFile, keys.DebugLevel, keys.LogDir)
}

// initExtractorFlags initializes the flags shared by every command that runs the extractor.
func initExtractorFlags(cmd *cobra.Command) error {
	pf := cmd.PersistentFlags()

	// Binaries
	pf.String(keys.YTDLPPath, "", "Path to yt-dlp (default "+consts.DefaultYTDLPPath+", then PATH)")
	pf.String(keys.FFmpegPath, "", "Path to ffmpeg (default: PATH lookup)")

	// Files
	pf.String(keys.TempDir, "", "Directory for in-flight downloads")
	pf.String(keys.CookiesFile, "", "Netscape cookies file passed to yt-dlp")
	pf.String(keys.ProfilesFile, "", "TOML file overriding the format profiles")

	// Request shaping
	pf.String(keys.Proxy, "", "Proxy URL passed to yt-dlp")
	pf.StringSlice(keys.UserAgents, nil, "User agent pool (default: built-in browser list)")
	pf.StringSlice(keys.AllowedDomains, nil, "Only accept URLs on these domains (default: all)")
	pf.Duration(keys.InfoTimeout, consts.DefaultInfoTimeout, "Timeout for each metadata attempt")
	pf.Duration(keys.DownloadTimeout, consts.DefaultDownloadTimeout, "Timeout for each download attempt")
	pf.Int64(keys.MinArtifactBytes, consts.MinArtifactBytes, "Smallest file accepted as a successful download")

	// Info providers
	pf.Bool(keys.InfoNative, false, "Try the built-in YouTube client when yt-dlp metadata fails")
	pf.Bool(keys.InfoMirrors, false, "Try alternative YouTube frontends when yt-dlp metadata fails")
	pf.StringSlice(keys.MirrorHosts, nil, "Alternative frontend base URLs")

	return bindFlags(pf,
		keys.YTDLPPath, keys.FFmpegPath,
		keys.TempDir, keys.CookiesFile, keys.ProfilesFile,
		keys.Proxy, keys.UserAgents, keys.AllowedDomains,
		keys.InfoTimeout, keys.DownloadTimeout, keys.MinArtifactBytes,
		keys.InfoNative, keys.InfoMirrors, keys.MirrorHosts,
	)
}

// initServerFlags sets the flags only the server needs.
func initServerFlags(cmd *cobra.Command) error {
	f := cmd.Flags()

	f.String(keys.ListenAddr, ":"+consts.DefaultPort, "Listen address")
	f.Bool(keys.TrustProxy, false, "Trust X-Forwarded-For/X-Real-IP for client addresses")
	f.Duration(keys.ArtifactTTL, consts.DefaultArtifactTTL, "Delete unserved downloads after this long")
	f.Duration(keys.BlockCooldown, 0, "Pause a platform for this long after bot detection (0 disables)")
	f.String(keys.DBPath, "", "SQLite database path (default ~/.fetcharr/fetcharr.db)")

	// Rate limiting
	f.Int(keys.RateLimit, consts.DefaultRateLimit, "Requests allowed per address per window (0 disables)")
	f.Duration(keys.RateWindow, consts.DefaultRateWindow, "Rate limit window")
	f.String(keys.LedgerBackend, "sqlite", "Rate limit ledger backend (sqlite or redis)")
	f.String(keys.RedisAddr, "", "Redis address for the redis ledger")
	f.Float64(keys.GlobalRPS, consts.DefaultGlobalRPS, "Server-wide requests per second (0 disables)")
	f.Int(keys.GlobalBurst, consts.DefaultGlobalBurst, "Server-wide burst size")

	return bindFlags(f,
		keys.ListenAddr, keys.TrustProxy, keys.ArtifactTTL, keys.BlockCooldown, keys.DBPath,
		keys.RateLimit, keys.RateWindow, keys.LedgerBackend, keys.RedisAddr, keys.GlobalRPS, keys.GlobalBurst,
	)
}

// initDownloadFlags sets the per-download flags.
func initDownloadFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	f.StringP(keys.Format, "f", string(models.FormatBest), "Format profile (best, medium, low, audio)")
	f.StringP(keys.OutDir, "o", ".", "Directory to place the finished file in")
	return bindFlags(f, keys.Format, keys.OutDir)
}
