package downloads

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fetcharr/internal/blocking"
	"fetcharr/internal/command/builder"
	"fetcharr/internal/command/execute"
	"fetcharr/internal/config"
	"fetcharr/internal/metadata"
	"fetcharr/internal/models"
)

type stubInfo struct {
	meta  models.VideoMetadata
	err   error
	calls int
}

func (s *stubInfo) GetInfo(context.Context, models.DownloadRequest) (models.VideoMetadata, error) {
	s.calls++
	return s.meta, s.err
}

// fileRunner writes an artifact of sizes[i] on attempt i (0 writes nothing).
type fileRunner struct {
	sizes  []int
	stderr string
	calls  int
}

func (f *fileRunner) Run(_ context.Context, v models.CommandVariant) (models.ExecutionResult, error) {
	i := f.calls
	f.calls++
	size := 0
	if i < len(f.sizes) {
		size = f.sizes[i]
	}
	if size > 0 && v.OutputPath != "" {
		p := strings.Replace(v.OutputPath, "%(ext)s", "mp4", 1)
		if err := os.WriteFile(p, bytes.Repeat([]byte{1}, size), 0o600); err != nil {
			return models.ExecutionResult{}, err
		}
		return models.ExecutionResult{ExitCode: 0}, nil
	}
	return models.ExecutionResult{ExitCode: 1, Stderr: []byte(f.stderr)}, nil
}

func newService(t *testing.T, info InfoSource, r execute.Runner, breaker *blocking.Breaker) (*Service, string) {
	t.Helper()
	s := config.Default()
	s.TempDir = filepath.Join(t.TempDir(), "downloads")
	b := builder.New(s, builder.WithPicker(builder.FirstPicker))
	return NewService(s, info, b, execute.New(r, time.Second), breaker), s.TempDir
}

func request(p models.PlatformTag, url string) models.DownloadRequest {
	return models.NewDownloadRequest(url, models.DefaultFormatProfiles()[models.FormatBest], p, false)
}

func TestDownloadRequiresMetadata(t *testing.T) {
	t.Parallel()

	info := &stubInfo{err: &metadata.InfoError{Platform: models.PlatformTikTok, Cause: errors.New("nope")}}
	runner := &fileRunner{sizes: []int{5000}}
	svc, _ := newService(t, info, runner, nil)

	_, err := svc.Download(context.Background(), request(models.PlatformTikTok, "https://tiktok.com/@a/video/1"))
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) || dlErr.Stage != StageInfo {
		t.Fatalf("expected info-stage DownloadError, got %v", err)
	}
	if !errors.Is(err, metadata.ErrMetadataUnavailable) {
		t.Fatalf("cause should be metadata unavailable: %v", err)
	}
	if runner.calls != 0 {
		t.Fatalf("no download should be attempted without metadata, got %d attempts", runner.calls)
	}
}

func TestDownloadSuccess(t *testing.T) {
	t.Parallel()

	info := &stubInfo{meta: models.VideoMetadata{Title: "Great Clip", SanitizedTitle: "Great_Clip"}}
	runner := &fileRunner{sizes: []int{0, 999, 4000}}
	svc, tempDir := newService(t, info, runner, nil)

	a, err := svc.Download(context.Background(), request(models.PlatformYouTube, "https://youtu.be/abc"))
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if runner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", runner.calls)
	}
	if a.Name != "Great_Clip.mp4" || a.Size != 4000 || a.Extension != "mp4" {
		t.Fatalf("unexpected artifact %+v", a)
	}
	if filepath.Dir(a.Path) != tempDir || !strings.HasPrefix(a.FileName, "download_") {
		t.Fatalf("artifact should live in the temp dir: %+v", a)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one artifact on disk, found %d", len(entries))
	}
}

func TestDownloadExhausted(t *testing.T) {
	t.Parallel()

	info := &stubInfo{meta: models.VideoMetadata{SanitizedTitle: "x"}}
	runner := &fileRunner{sizes: []int{10, 20}}
	svc, tempDir := newService(t, info, runner, nil)

	_, err := svc.Download(context.Background(), request(models.PlatformInstagram, "https://instagram.com/p/x"))
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) || dlErr.Stage != StageDownload {
		t.Fatalf("expected download-stage DownloadError, got %v", err)
	}
	if want := "Failed to download Instagram content. Instagram may require authentication."; dlErr.UserMessage() != want {
		t.Fatalf("UserMessage = %q", dlErr.UserMessage())
	}
	if runner.calls != 2 {
		t.Fatalf("instagram has two variants, got %d attempts", runner.calls)
	}

	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 0 {
		t.Fatalf("failed download left %d file(s) behind", len(entries))
	}
}

func TestBlockedPlatformCoolsDown(t *testing.T) {
	t.Parallel()

	info := &stubInfo{meta: models.VideoMetadata{SanitizedTitle: "x"}}
	runner := &fileRunner{stderr: "ERROR: Sign in to confirm you're not a bot"}
	breaker := blocking.NewBreaker(time.Hour)
	svc, _ := newService(t, info, runner, breaker)

	req := request(models.PlatformYouTube, "https://youtu.be/abc")
	_, err := svc.Download(context.Background(), req)
	if !errors.Is(err, execute.ErrBlocked) {
		t.Fatalf("first download err = %v, want blocked", err)
	}
	attempts := runner.calls

	_, err = svc.Download(context.Background(), req)
	if !errors.Is(err, ErrPlatformBlocked) {
		t.Fatalf("second download err = %v, want platform blocked", err)
	}
	if runner.calls != attempts || info.calls != 1 {
		t.Fatalf("cooldown should short-circuit before any work")
	}
	if !strings.Contains(UserMessage(models.PlatformYouTube, err), "temporarily refusing") {
		t.Fatalf("unexpected user message %q", UserMessage(models.PlatformYouTube, err))
	}

	if _, err := svc.Info(context.Background(), request(models.PlatformTikTok, "https://tiktok.com/x")); err != nil {
		t.Fatalf("other platforms should be unaffected: %v", err)
	}
}

func TestUserMessageTimeout(t *testing.T) {
	t.Parallel()

	err := &DownloadError{Platform: models.PlatformYouTube, Stage: StageDownload, Cause: &execute.ExecutionError{Kind: execute.KindTimeout}}
	if !strings.Contains(err.UserMessage(), "lower quality") {
		t.Fatalf("timeout should suggest a smaller format, got %q", err.UserMessage())
	}
}

type versionRunner struct{}

func (versionRunner) Run(_ context.Context, v models.CommandVariant) (models.ExecutionResult, error) {
	if v.Binary == "missing-ffmpeg" {
		return models.ExecutionResult{ExitCode: -1}, &os.PathError{Op: "fork/exec", Path: v.Binary, Err: os.ErrNotExist}
	}
	return models.ExecutionResult{ExitCode: 0, Stdout: []byte("2025.01.15\nextra")}, nil
}

func TestCheckTools(t *testing.T) {
	t.Parallel()

	s := config.Default()
	s.FFmpegPath = "missing-ffmpeg"
	svc := NewService(s, &stubInfo{}, builder.New(s), execute.New(versionRunner{}, time.Second), nil)

	got := svc.CheckTools(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected two tool statuses, got %d", len(got))
	}
	if !got[0].Installed || got[0].Version != "2025.01.15" {
		t.Fatalf("yt-dlp status = %+v", got[0])
	}
	if got[1].Installed || got[1].Error == "" {
		t.Fatalf("ffmpeg status = %+v", got[1])
	}
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	s := config.Default()
	s.AllowedDomains = []string{"youtube.com", "tiktok.com"}

	req, err := ParseRequest(s, "https://m.youtube.com/shorts/abc123", "720p")
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Platform != models.PlatformYouTube || !req.Shorts || req.Format.Key != models.FormatMedium {
		t.Fatalf("unexpected request %+v", req)
	}

	tests := []struct {
		name, url, format string
		want              error
	}{
		{"empty", "", "", ErrInvalidRequest},
		{"scheme", "ftp://youtube.com/x", "", ErrInvalidRequest},
		{"no host", "https:///watch", "", ErrInvalidRequest},
		{"domain", "https://vimeo.com/1", "", ErrUnsupportedDomain},
		{"private", "http://127.0.0.1:8080/video.mp4", "", ErrUnsupportedDomain},
		{"format", "https://tiktok.com/@a/video/1", "8k", ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRequest(s, tt.url, tt.format); !errors.Is(err, tt.want) {
				t.Fatalf("ParseRequest(%q, %q) err = %v, want %v", tt.url, tt.format, err, tt.want)
			}
		})
	}
}

func TestParseRequestCustomProfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.toml")
	content := "[[profile]]\nkey = \"HD1080\"\nformat = \"bestvideo[height<=1080]+bestaudio\"\next = \"mkv\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}
	profiles, err := config.LoadProfiles(path, models.DefaultFormatProfiles())
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}

	s := config.Default()
	s.Profiles = profiles
	for _, requested := range []string{"HD1080", "hd1080"} {
		req, err := ParseRequest(s, "https://www.youtube.com/watch?v=abc123", requested)
		if err != nil {
			t.Fatalf("ParseRequest(%q): %v", requested, err)
		}
		if req.Format.Key != "hd1080" || req.Format.Extension != "mkv" {
			t.Fatalf("ParseRequest(%q) picked %+v", requested, req.Format)
		}
	}
}
