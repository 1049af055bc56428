package builder

import (
	"fetcharr/internal/domain/command"
	"fetcharr/internal/models"
)

type uaMode int

const (
	uaNone uaMode = iota
	uaPooled
	uaMobile
)

// strategy is one row of a variant table.
//
// args returns everything except the output template and the trailing URL.
type strategy struct {
	name string
	ua   uaMode
	args func(b *Builder, req models.DownloadRequest, ua, out string) []string
}

func tableFor(p models.PlatformTag, kind models.VariantKind) []strategy {
	if kind == models.KindInfo {
		switch p {
		case models.PlatformYouTube:
			return youtubeInfo
		case models.PlatformInstagram, models.PlatformFacebook:
			return socialInfo
		default:
			return genericInfo
		}
	}
	switch p {
	case models.PlatformYouTube:
		return youtubeDownload
	case models.PlatformInstagram, models.PlatformFacebook:
		return socialDownload
	default:
		return genericDownload
	}
}

// Info tables.
var (
	youtubeInfo = []strategy{
		{
			name: "android-client",
			ua:   uaPooled,
			args: func(b *Builder, _ models.DownloadRequest, ua, _ string) []string {
				args := []string{command.NoCheckCert, command.NoWarnings, command.IgnoreErrors,
					command.ExtractorArgs, command.AndroidClientArg,
					command.UserAgent, ua}
				args = b.cookieProxy(args)
				return append(args, command.DumpJSON)
			},
		},
		{
			name: "desktop-client",
			ua:   uaPooled,
			args: func(b *Builder, _ models.DownloadRequest, ua, _ string) []string {
				args := []string{command.NoCheckCert, command.NoWarnings, command.IgnoreErrors,
					command.UserAgent, ua}
				args = b.cookieProxy(args)
				return append(args, command.PrintJSON, command.SkipVideo)
			},
		},
	}

	socialInfo = []strategy{
		{
			name: "mobile-ua",
			ua:   uaMobile,
			args: func(b *Builder, _ models.DownloadRequest, ua, _ string) []string {
				args := []string{command.OutputJSON, command.NoCheckCert, command.NoWarnings,
					command.UserAgent, ua}
				return b.cookieProxy(args)
			},
		},
		{
			name: "simple",
			args: func(b *Builder, _ models.DownloadRequest, _, _ string) []string {
				args := []string{command.DumpJSON, command.SkipVideo}
				return b.cookieProxy(args)
			},
		},
	}

	genericInfo = []strategy{
		{
			name: "primary",
			args: func(b *Builder, _ models.DownloadRequest, _, _ string) []string {
				args := []string{command.OutputJSON, command.NoCheckCert, command.NoWarnings}
				return b.cookieProxy(args)
			},
		},
		{
			name: "simple",
			args: func(b *Builder, _ models.DownloadRequest, _, _ string) []string {
				args := []string{command.DumpJSON, command.SkipVideo}
				return b.cookieProxy(args)
			},
		},
	}
)

// Download tables.
var (
	youtubeDownload = []strategy{
		{
			name: "android-client",
			ua:   uaPooled,
			args: func(b *Builder, req models.DownloadRequest, ua, _ string) []string {
				args := formatArgs(req.Format)
				args = append(args, command.NoCheckCert, command.NoWarnings, command.IgnoreErrors,
					command.ExtractorArgs, command.AndroidClientArg,
					command.UserAgent, ua)
				args = b.cookieProxy(args)
				return b.ffmpegLocation(args)
			},
		},
		{
			name: "desktop-simple-format",
			ua:   uaPooled,
			args: func(b *Builder, req models.DownloadRequest, ua, _ string) []string {
				args := simpleFormatArgs(req.Format)
				args = append(args, command.NoCheckCert, command.NoWarnings)
				args = b.cookieProxy(args)
				args = append(args, command.UserAgent, ua)
				return b.ffmpegLocation(args)
			},
		},
		{
			name: "minimal-flags",
			ua:   uaPooled,
			args: func(b *Builder, _ models.DownloadRequest, ua, _ string) []string {
				args := []string{command.ForceOverwrites, command.NoCheckCert, command.NoWarnings, command.IgnoreErrors}
				args = b.cookieProxy(args)
				args = append(args, command.UserAgent, ua)
				return b.ffmpegLocation(args)
			},
		},
		{
			name: "last-resort",
			args: func(b *Builder, _ models.DownloadRequest, _, _ string) []string {
				args := []string{command.NoPlaylist, command.NoCheckCert, command.ForceOverwrites}
				return b.cookieProxy(args)
			},
		},
	}

	socialDownload = []strategy{
		{
			name: "primary",
			ua:   uaPooled,
			args: func(b *Builder, req models.DownloadRequest, ua, _ string) []string {
				args := append(formatArgs(req.Format), command.NoCheckCert, command.NoWarnings)
				args = b.cookieProxy(args)
				args = append(args, command.UserAgent, ua)
				return b.ffmpegLocation(args)
			},
		},
		{
			name: "mobile-ua",
			ua:   uaMobile,
			args: func(b *Builder, _ models.DownloadRequest, ua, _ string) []string {
				args := []string{command.ForceOverwrites, command.NoCheckCert}
				args = b.cookieProxy(args)
				return append(args, command.UserAgent, ua)
			},
		},
	}

	genericDownload = []strategy{
		{
			name: "primary",
			args: func(b *Builder, req models.DownloadRequest, _, _ string) []string {
				args := formatArgs(req.Format)
				args = append(args, command.NoCheckCert)
				args = b.cookieProxy(args)
				return b.ffmpegLocation(args)
			},
		},
		{
			name: "simple",
			args: func(b *Builder, _ models.DownloadRequest, _, _ string) []string {
				args := []string{command.NoCheckCert}
				return b.cookieProxy(args)
			},
		},
	}
)
