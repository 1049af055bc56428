// Package cfg provides configuration and command-line interface setup for fetcharr.
package cfg

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fetcharr/internal/config"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/keys"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/domain/paths"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings is built once per run in PersistentPreRunE.
var settings config.Settings

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           consts.ProgramName,
		Short:         "fetcharr downloads videos through yt-dlp with ordered fallbacks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f := viper.GetString(keys.ConfigFile); f != "" {
				if err := loadConfigFile(f); err != nil {
					return err
				}
			}
			if err := setupLogging(); err != nil {
				fmt.Fprintf(os.Stderr, "could not set up log file, logging to console only: %v\n", err)
			}

			s, err := config.FromViper()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			settings = s
			return nil
		},
	}
}

// InitCommands initializes all commands and their flags.
func InitCommands() error {
	viper.SetEnvPrefix(consts.ProgramName)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_")) // "ytdlp-path" -> FETCHARR_YTDLP_PATH
	viper.AutomaticEnv()

	if err := initProgramFlags(rootCmd); err != nil {
		return err
	}
	if err := initExtractorFlags(rootCmd); err != nil {
		return err
	}

	serve, err := serveCmd()
	if err != nil {
		return err
	}
	download, err := downloadCmd()
	if err != nil {
		return err
	}

	rootCmd.AddCommand(
		serve,
		infoCmd(),
		download,
		formatsCmd(),
		doctorCmd(),
		updateCmd(),
		cookiesCmd(),
	)
	return nil
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setupLogging points the program logger at the console and the rotating log file.
func setupLogging() error {
	console := logger.New(os.Stderr, consts.ProgramName)
	logConfig := logger.LoggingConfig{
		LogFilePath: paths.LogFileIn(viper.GetString(keys.LogDir)),
		MaxSizeMB:   1,
		MaxBackups:  3,
		Console:     os.Stderr,
		Program:     consts.ProgramName,
	}

	pl, err := logger.SetupLogging(logConfig)
	if err != nil {
		pl = console
	}
	pl.SetDebugLevel(viper.GetInt(keys.DebugLevel))
	logger.Pl = pl
	return err
}
