// Package builder turns a download request into ordered extractor invocations.
package builder

import (
	"math/rand/v2"

	"fetcharr/internal/config"
	"fetcharr/internal/domain/command"
	"fetcharr/internal/models"
)

// UAPicker selects one user agent from the pool.
type UAPicker func(pool []string) string

// RandomPicker picks uniformly from the pool.
func RandomPicker(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.IntN(len(pool))]
}

// FirstPicker always returns the first pool entry.
func FirstPicker(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[0]
}

// Builder holds the configured tool paths and optional arguments.
//
// It never touches the filesystem or runs anything.
type Builder struct {
	ytdlp   string
	ffmpeg  string
	cookies string
	proxy   string
	agents  []string
	pick    UAPicker
}

// Option customizes a Builder.
type Option func(*Builder)

// WithPicker overrides the user-agent picker.
func WithPicker(p UAPicker) Option {
	return func(b *Builder) {
		if p != nil {
			b.pick = p
		}
	}
}

// New returns a Builder from settings.
func New(s config.Settings, opts ...Option) *Builder {
	b := &Builder{
		ytdlp:   s.YTDLPPath,
		ffmpeg:  s.FFmpegPath,
		cookies: s.CookiesFile,
		proxy:   s.Proxy,
		agents:  s.UserAgents,
		pick:    RandomPicker,
	}
	if b.ytdlp == "" {
		b.ytdlp = command.YTDLP
	}
	if len(b.agents) == 0 {
		b.agents = config.DefaultUserAgents()
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Count returns how many variants exist for the platform and kind.
func (b *Builder) Count(p models.PlatformTag, kind models.VariantKind) int {
	return len(tableFor(p, kind))
}

// Build returns the variant at index for the request's platform.
//
// outputPath is the output template for download variants and ignored for info variants.
func (b *Builder) Build(req models.DownloadRequest, kind models.VariantKind, index int, outputPath string) (models.CommandVariant, bool) {
	table := tableFor(req.Platform, kind)
	if index < 0 || index >= len(table) {
		return models.CommandVariant{}, false
	}
	s := table[index]

	ua := ""
	switch s.ua {
	case uaPooled:
		ua = b.pick(b.agents)
	case uaMobile:
		ua = config.IPhoneUserAgent
	}

	args := s.args(b, req, ua, outputPath)
	if kind == models.KindDownload {
		args = append(args, command.Output, outputPath)
	}
	args = append(args, command.EndOfOptions, req.URL)

	v := models.CommandVariant{
		Name:        s.name,
		Binary:      b.ytdlp,
		Args:        args,
		ExpectsJSON: kind == models.KindInfo,
		UserAgent:   ua,
	}
	if kind == models.KindDownload {
		v.OutputPath = outputPath
	}
	return v, true
}

// Variants returns every variant for the request in priority order.
func (b *Builder) Variants(req models.DownloadRequest, kind models.VariantKind, outputPath string) []models.CommandVariant {
	n := b.Count(req.Platform, kind)
	out := make([]models.CommandVariant, 0, n)
	for i := range n {
		if v, ok := b.Build(req, kind, i, outputPath); ok {
			out = append(out, v)
		}
	}
	return out
}

// VersionCommand returns the extractor version probe.
func (b *Builder) VersionCommand() models.CommandVariant {
	return models.CommandVariant{Name: "version", Binary: b.ytdlp, Args: []string{command.Version}}
}

// TranscoderVersionCommand returns the transcoder version probe, or false when none is configured.
func (b *Builder) TranscoderVersionCommand() (models.CommandVariant, bool) {
	if b.ffmpeg == "" {
		return models.CommandVariant{}, false
	}
	return models.CommandVariant{Name: "ffmpeg-version", Binary: b.ffmpeg, Args: []string{command.FFmpegVersion}}, true
}

// UpdateCommand returns the extractor self-update invocation.
func (b *Builder) UpdateCommand() models.CommandVariant {
	return models.CommandVariant{Name: "update", Binary: b.ytdlp, Args: []string{command.Update}}
}

// cookieProxy appends the optional cookie and proxy arguments.
func (b *Builder) cookieProxy(args []string) []string {
	if b.cookies != "" {
		args = append(args, command.CookiePath, b.cookies)
	}
	if b.proxy != "" {
		args = append(args, command.Proxy, b.proxy)
	}
	return args
}

// ffmpegLocation appends --ffmpeg-location when a transcoder path is known.
func (b *Builder) ffmpegLocation(args []string) []string {
	if b.ffmpeg != "" {
		args = append(args, command.FFmpegLocation, b.ffmpeg)
	}
	return args
}

// formatArgs selects the profile's format and output container.
func formatArgs(f models.FormatProfile) []string {
	args := []string{command.Format, f.Expression}
	if f.AudioOnly {
		return append(args, command.ExtractAudio, command.AudioFormat, f.Extension, command.AudioQuality, command.AudioQualityBest)
	}
	return append(args, command.YtDLPOutputExtension, f.Extension)
}

// simpleFormatArgs is the reduced format selection used by the second YouTube variant.
func simpleFormatArgs(f models.FormatProfile) []string {
	if f.AudioOnly {
		return []string{command.Format, command.BestAudio, command.ExtractAudio, command.AudioFormat, f.Extension, command.AudioQuality, command.AudioQualityBest}
	}
	return []string{command.Format, command.SimpleVideoFormat, command.YtDLPOutputExtension, f.Extension}
}
