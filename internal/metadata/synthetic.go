package metadata

import (
	"context"
	"fmt"

	"fetcharr/internal/models"
	"fetcharr/internal/platform"
)

// SyntheticProvider builds minimal YouTube metadata from the video ID alone.
//
// It makes no network calls and is always the last provider in the chain.
type SyntheticProvider struct{}

// Name implements Provider.
func (SyntheticProvider) Name() string { return "synthetic" }

// Supports implements Provider.
func (SyntheticProvider) Supports(req models.DownloadRequest) bool {
	return req.Platform == models.PlatformYouTube
}

// Fetch implements Provider.
func (SyntheticProvider) Fetch(_ context.Context, req models.DownloadRequest) (models.VideoMetadata, error) {
	id, ok := platform.ExtractYouTubeID(req.URL)
	if !ok {
		return models.VideoMetadata{}, fmt.Errorf("no video ID in %q", req.URL)
	}
	return models.VideoMetadata{
		Title:        "YouTube Video " + id,
		Uploader:     "YouTube Creator",
		ThumbnailURL: YouTubeThumbnail(id),
		ExternalID:   id,
		Synthetic:    true,
	}, nil
}

// YouTubeThumbnail returns the conventional thumbnail URL for a video ID.
func YouTubeThumbnail(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}
