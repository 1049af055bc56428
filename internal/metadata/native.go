package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fetcharr/internal/models"
	"fetcharr/internal/platform"

	"github.com/kkdai/youtube/v2"
)

// NativeProvider queries YouTube directly without the extractor.
type NativeProvider struct {
	client *youtube.Client
}

// NewNativeProvider returns a NativeProvider with the given HTTP timeout.
func NewNativeProvider(timeout time.Duration) *NativeProvider {
	return &NativeProvider{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: timeout},
		},
	}
}

// Name implements Provider.
func (p *NativeProvider) Name() string { return "native" }

// Supports implements Provider.
func (p *NativeProvider) Supports(req models.DownloadRequest) bool {
	return req.Platform == models.PlatformYouTube
}

// Fetch implements Provider.
func (p *NativeProvider) Fetch(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error) {
	id, ok := platform.ExtractYouTubeID(req.URL)
	if !ok {
		return models.VideoMetadata{}, fmt.Errorf("no video ID in %q", req.URL)
	}

	video, err := p.client.GetVideoContext(ctx, id)
	if err != nil {
		return models.VideoMetadata{}, fmt.Errorf("native lookup for %q failed: %w", id, err)
	}

	m := models.VideoMetadata{
		Title:           video.Title,
		Uploader:        video.Author,
		DurationSeconds: int64(video.Duration.Seconds()),
		ViewCount:       int64(video.Views),
		ExternalID:      video.ID,
		ThumbnailURL:    YouTubeThumbnail(video.ID),
	}
	if n := len(video.Thumbnails); n > 0 {
		m.ThumbnailURL = video.Thumbnails[n-1].URL
	}
	if !video.PublishDate.IsZero() {
		m.UploadDate = video.PublishDate.Format("2006-01-02")
	}
	return m, nil
}
