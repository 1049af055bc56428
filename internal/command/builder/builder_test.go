package builder

import (
	"slices"
	"strings"
	"testing"

	"fetcharr/internal/config"
	"fetcharr/internal/models"
)

func testSettings() config.Settings {
	s := config.Default()
	s.YTDLPPath = "/usr/local/bin/yt-dlp"
	s.FFmpegPath = "/usr/bin/ffmpeg"
	return s
}

func request(t *testing.T, platform models.PlatformTag, key models.FormatKey, url string) models.DownloadRequest {
	t.Helper()
	p, ok := models.DefaultFormatProfiles()[key]
	if !ok {
		t.Fatalf("missing profile %q", key)
	}
	return models.NewDownloadRequest(url, p, platform, false)
}

func TestVariantOrdering(t *testing.T) {
	t.Parallel()

	b := New(testSettings(), WithPicker(FirstPicker))

	tests := []struct {
		platform models.PlatformTag
		kind     models.VariantKind
		want     []string
	}{
		{models.PlatformYouTube, models.KindInfo, []string{"android-client", "desktop-client"}},
		{models.PlatformYouTube, models.KindDownload, []string{"android-client", "desktop-simple-format", "minimal-flags", "last-resort"}},
		{models.PlatformInstagram, models.KindDownload, []string{"primary", "mobile-ua"}},
		{models.PlatformFacebook, models.KindInfo, []string{"mobile-ua", "simple"}},
		{models.PlatformTikTok, models.KindDownload, []string{"primary", "simple"}},
		{models.PlatformGeneric, models.KindInfo, []string{"primary", "simple"}},
	}

	for _, tt := range tests {
		req := request(t, tt.platform, models.FormatBest, "https://example.com/v")
		vs := b.Variants(req, tt.kind, "/tmp/fetcharr/download_x.%(ext)s")
		var names []string
		for _, v := range vs {
			names = append(names, v.Name)
		}
		if !slices.Equal(names, tt.want) {
			t.Errorf("%s/%d variants = %v, want %v", tt.platform, tt.kind, names, tt.want)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	b := New(testSettings(), WithPicker(FirstPicker))
	req := request(t, models.PlatformYouTube, models.FormatMedium, "https://youtu.be/abc")

	first, ok := b.Build(req, models.KindDownload, 0, "/tmp/out.%(ext)s")
	if !ok {
		t.Fatalf("expected variant 0")
	}
	second, _ := b.Build(req, models.KindDownload, 0, "/tmp/out.%(ext)s")
	if !slices.Equal(first.Args, second.Args) {
		t.Fatalf("same index produced different args:\n%v\n%v", first.Args, second.Args)
	}

	if _, ok := b.Build(req, models.KindDownload, 4, ""); ok {
		t.Fatalf("index past the table should not build")
	}
	if _, ok := b.Build(req, models.KindDownload, -1, ""); ok {
		t.Fatalf("negative index should not build")
	}
}

func TestURLIsLastDiscreteArgument(t *testing.T) {
	t.Parallel()

	b := New(testSettings())
	hostile := "https://example.com/v; rm -rf / --exec 'touch pwned'"

	for _, p := range []models.PlatformTag{models.PlatformYouTube, models.PlatformTikTok, models.PlatformInstagram, models.PlatformGeneric} {
		req := request(t, p, models.FormatBest, hostile)
		for _, kind := range []models.VariantKind{models.KindInfo, models.KindDownload} {
			for _, v := range b.Variants(req, kind, "/tmp/out.%(ext)s") {
				n := len(v.Args)
				if n < 2 || v.Args[n-1] != hostile || v.Args[n-2] != "--" {
					t.Fatalf("%s %s: URL must follow -- as a single argument, got %q", p, v.Name, v.Args)
				}
			}
		}
	}
}

func TestFormatArguments(t *testing.T) {
	t.Parallel()

	b := New(testSettings(), WithPicker(FirstPicker))

	audio := request(t, models.PlatformYouTube, models.FormatAudioOnly, "https://youtu.be/abc")
	v, _ := b.Build(audio, models.KindDownload, 0, "/tmp/o.%(ext)s")
	joined := strings.Join(v.Args, " ")
	for _, want := range []string{"-f bestaudio", "-x --audio-format mp3 --audio-quality 0", "--ffmpeg-location /usr/bin/ffmpeg", "-o /tmp/o.%(ext)s", "--extractor-args youtube:player_client=android"} {
		if !strings.Contains(joined, want) {
			t.Errorf("audio args missing %q: %s", want, joined)
		}
	}

	video := request(t, models.PlatformTikTok, models.FormatLow, "https://tiktok.com/@a/video/1")
	v, _ = b.Build(video, models.KindDownload, 0, "/tmp/o.%(ext)s")
	joined = strings.Join(v.Args, " ")
	if !strings.Contains(joined, "-f bestvideo[height<=480]+bestaudio/best[height<=480] --merge-output-format mp4") {
		t.Errorf("video args missing format selection: %s", joined)
	}

	v, _ = b.Build(video, models.KindDownload, 1, "/tmp/o.%(ext)s")
	if slices.Contains(v.Args, "-f") {
		t.Errorf("simple variant should not carry a format expression: %v", v.Args)
	}
}

func TestSocialDownloadHonorsProfile(t *testing.T) {
	t.Parallel()

	b := New(testSettings(), WithPicker(FirstPicker))

	tests := []struct {
		platform models.PlatformTag
		url      string
	}{
		{models.PlatformInstagram, "https://instagram.com/reel/abc"},
		{models.PlatformFacebook, "https://facebook.com/watch?v=1"},
	}
	for _, tt := range tests {
		audio := request(t, tt.platform, models.FormatAudioOnly, tt.url)
		v, ok := b.Build(audio, models.KindDownload, 0, "/tmp/o.%(ext)s")
		if !ok {
			t.Fatalf("%s: no primary variant", tt.platform)
		}
		joined := strings.Join(v.Args, " ")
		if !strings.HasPrefix(joined, "-f bestaudio -x --audio-format mp3 --audio-quality 0") {
			t.Errorf("%s primary should extract audio: %s", tt.platform, joined)
		}

		video := request(t, tt.platform, models.FormatMedium, tt.url)
		v, _ = b.Build(video, models.KindDownload, 0, "/tmp/o.%(ext)s")
		joined = strings.Join(v.Args, " ")
		if !strings.Contains(joined, "--merge-output-format mp4") || slices.Contains(v.Args, "-x") {
			t.Errorf("%s primary should merge video: %s", tt.platform, joined)
		}

		v, _ = b.Build(audio, models.KindDownload, 1, "/tmp/o.%(ext)s")
		if v.Name != "mobile-ua" || slices.Contains(v.Args, "-f") {
			t.Errorf("%s fallback should be format-less mobile-ua: %s %v", tt.platform, v.Name, v.Args)
		}
	}
}

func TestCookieAndProxyOnlyWhenConfigured(t *testing.T) {
	t.Parallel()

	req := request(t, models.PlatformGeneric, models.FormatBest, "https://example.com/v")

	plain := New(testSettings())
	for _, v := range plain.Variants(req, models.KindInfo, "") {
		if slices.Contains(v.Args, "--cookies") || slices.Contains(v.Args, "--proxy") {
			t.Fatalf("unexpected cookie/proxy args: %v", v.Args)
		}
	}

	s := testSettings()
	s.CookiesFile = "/srv/cookies.txt"
	s.Proxy = "socks5://127.0.0.1:9050"
	withBoth := New(s)
	for _, v := range withBoth.Variants(req, models.KindInfo, "") {
		joined := strings.Join(v.Args, " ")
		if !strings.Contains(joined, "--cookies /srv/cookies.txt") || !strings.Contains(joined, "--proxy socks5://127.0.0.1:9050") {
			t.Fatalf("cookie/proxy args missing: %s", joined)
		}
	}
}

func TestUserAgentSelection(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.UserAgents = []string{"ua-one", "ua-two"}
	b := New(s, WithPicker(func(pool []string) string { return pool[len(pool)-1] }))

	yt := request(t, models.PlatformYouTube, models.FormatBest, "https://youtu.be/abc")
	v, _ := b.Build(yt, models.KindInfo, 0, "")
	if v.UserAgent != "ua-two" || !slices.Contains(v.Args, "ua-two") {
		t.Fatalf("pooled variant should use the picked agent, got %q / %v", v.UserAgent, v.Args)
	}

	ig := request(t, models.PlatformInstagram, models.FormatBest, "https://instagram.com/p/x")
	v, _ = b.Build(ig, models.KindDownload, 1, "/tmp/o.%(ext)s")
	if v.UserAgent != config.IPhoneUserAgent {
		t.Fatalf("mobile variant should use the iPhone agent, got %q", v.UserAgent)
	}

	v, _ = b.Build(yt, models.KindDownload, 3, "/tmp/o.%(ext)s")
	if v.UserAgent != "" || slices.Contains(v.Args, "--user-agent") {
		t.Fatalf("last-resort variant should not set a user agent: %v", v.Args)
	}
}

func TestInfoVariantsExpectJSON(t *testing.T) {
	t.Parallel()

	b := New(testSettings())
	req := request(t, models.PlatformYouTube, models.FormatBest, "https://youtu.be/abc")
	for _, v := range b.Variants(req, models.KindInfo, "ignored") {
		if !v.ExpectsJSON || v.OutputPath != "" {
			t.Fatalf("info variant %s should expect JSON without output path: %+v", v.Name, v)
		}
		if slices.Contains(v.Args, "-o") {
			t.Fatalf("info variant %s should not write files: %v", v.Name, v.Args)
		}
	}
	for _, v := range b.Variants(req, models.KindDownload, "/tmp/o.%(ext)s") {
		if v.ExpectsJSON || v.OutputPath != "/tmp/o.%(ext)s" {
			t.Fatalf("download variant %s misconfigured: %+v", v.Name, v)
		}
	}
}
