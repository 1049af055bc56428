package cfg

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"fetcharr/internal/app"
	"fetcharr/internal/cookies"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/keys"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/domain/paths"
	"fetcharr/internal/downloads"
	"fetcharr/internal/file"
	"fetcharr/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd runs the HTTP server.
func serveCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New(settings, nil).Serve(cmd.Context())
		},
	}
	return cmd, initServerFlags(cmd)
}

// infoCmd prints normalized metadata for a URL.
func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Print video metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := downloads.ParseRequest(settings, args[0], "")
			if err != nil {
				return err
			}
			m, err := app.New(settings, nil).Service.Info(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("%s: %w", downloads.UserMessage(req.Platform, err), err)
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
}

// downloadCmd downloads a URL into the output directory.
func downloadCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video to a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := downloads.ParseRequest(settings, args[0], viper.GetString(keys.Format))
			if err != nil {
				return err
			}

			outDir, err := filepath.Abs(viper.GetString(keys.OutDir))
			if err != nil {
				return err
			}
			if err := paths.EnsureDir(outDir, consts.PermsGenericDir); err != nil {
				return err
			}

			a, err := app.New(settings, nil).Service.Download(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("%s: %w", downloads.UserMessage(req.Platform, err), err)
			}

			dest, err := file.MoveArtifact(a, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}
	return cmd, initDownloadFlags(cmd)
}

// formatsCmd lists the configured format profiles.
func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List format profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := make([]models.FormatProfile, 0, len(settings.Profiles))
			for _, p := range settings.Profiles {
				profiles = append(profiles, p)
			}
			sort.Slice(profiles, func(i, j int) bool { return profiles[i].Key < profiles[j].Key })
			for _, p := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-24s %-4s %s\n", p.Key, p.Label, p.Extension, p.Expression)
			}
			return nil
		},
	}
}

// doctorCmd checks the external tools.
func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that yt-dlp and ffmpeg are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missing := 0
			for _, st := range app.New(settings, nil).Service.CheckTools(cmd.Context()) {
				if st.Installed {
					fmt.Fprintf(cmd.OutOrStdout(), "OK      %-7s %s (%s)\n", st.Name, st.Version, st.Path)
					continue
				}
				missing++
				fmt.Fprintf(cmd.OutOrStdout(), "MISSING %-7s %s\n", st.Name, st.Error)
			}
			if missing > 0 {
				return fmt.Errorf("%d required tool(s) unavailable", missing)
			}
			return nil
		},
	}
}

// updateCmd runs the extractor's self-update.
func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update yt-dlp in place (yt-dlp -U)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.New(settings, nil).Service.UpdateExtractor(cmd.Context())
			if err != nil {
				return fmt.Errorf("update failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// cookiesCmd groups cookie helpers.
func cookiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Cookie file helpers",
	}

	var (
		domains []string
		out     string
	)
	export := &cobra.Command{
		Use:   "export",
		Short: "Export browser cookies to a Netscape cookies file for --cookies-file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join(paths.HomeFetcharrDir, "cookies.txt")
			}
			n, err := cookies.Export(cmd.Context(), cookies.BrowserSource, domains, out)
			if err != nil {
				return err
			}
			logger.Pl.I("Use it with --%s %s", keys.CookiesFile, out)
			fmt.Fprintf(cmd.OutOrStdout(), "%d cookies written to %s\n", n, out)
			return nil
		},
	}
	export.Flags().StringSliceVar(&domains, keys.CookieDomain, []string{"youtube.com", "instagram.com", "facebook.com", "tiktok.com"}, "Domains to export cookies for")
	export.Flags().StringVarP(&out, keys.OutDir, "o", "", "Output file (default ~/.fetcharr/cookies.txt)")

	cmd.AddCommand(export)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
