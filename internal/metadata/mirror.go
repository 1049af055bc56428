package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/models"
	"fetcharr/internal/platform"

	"github.com/gocolly/colly"
)

// DefaultMirrorHosts are alternative YouTube frontends exposing /api/v1/videos/<id>.
var DefaultMirrorHosts = []string{
	"https://invidious.snopyta.org",
	"https://yewtu.be",
	"https://invidious.kavin.rocks",
	"https://vid.puffyan.us",
}

// MirrorProvider reads metadata from alternative frontend instances.
type MirrorProvider struct {
	hosts     []string
	timeout   time.Duration
	userAgent string
}

// NewMirrorProvider returns a MirrorProvider querying hosts in order.
func NewMirrorProvider(hosts []string, timeout time.Duration, userAgent string) *MirrorProvider {
	if len(hosts) == 0 {
		hosts = DefaultMirrorHosts
	}
	return &MirrorProvider{hosts: hosts, timeout: timeout, userAgent: userAgent}
}

// Name implements Provider.
func (p *MirrorProvider) Name() string { return "mirror" }

// Supports implements Provider.
func (p *MirrorProvider) Supports(req models.DownloadRequest) bool {
	return req.Platform == models.PlatformYouTube
}

type mirrorThumbnail struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

type mirrorVideo struct {
	VideoID         string            `json:"videoId"`
	Title           string            `json:"title"`
	Author          string            `json:"author"`
	LengthSeconds   int64             `json:"lengthSeconds"`
	Published       int64             `json:"published"`
	ViewCount       int64             `json:"viewCount"`
	LikeCount       int64             `json:"likeCount"`
	VideoThumbnails []mirrorThumbnail `json:"videoThumbnails"`
}

// Fetch implements Provider.
func (p *MirrorProvider) Fetch(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error) {
	id, ok := platform.ExtractYouTubeID(req.URL)
	if !ok {
		return models.VideoMetadata{}, fmt.Errorf("no video ID in %q", req.URL)
	}

	var errs []error
	for _, host := range p.hosts {
		if err := ctx.Err(); err != nil {
			return models.VideoMetadata{}, err
		}
		m, err := p.fetchFrom(host, id)
		if err == nil {
			return m, nil
		}
		logger.Pl.D(2, "Mirror %q failed for %q: %v", host, id, err)
		errs = append(errs, err)
	}
	return models.VideoMetadata{}, fmt.Errorf("all mirrors failed: %w", errors.Join(errs...))
}

func (p *MirrorProvider) fetchFrom(host, id string) (models.VideoMetadata, error) {
	endpoint := strings.TrimRight(host, "/") + "/api/v1/videos/" + id

	c := colly.NewCollector(colly.AllowURLRevisit())
	if p.userAgent != "" {
		c.UserAgent = p.userAgent
	}
	c.SetRequestTimeout(p.timeout)

	var (
		video   mirrorVideo
		decoded bool
		cbErr   error
	)
	c.OnResponse(func(r *colly.Response) {
		if err := json.Unmarshal(r.Body, &video); err != nil {
			cbErr = fmt.Errorf("invalid mirror response: %w", err)
			return
		}
		decoded = true
	})

	if err := c.Visit(endpoint); err != nil {
		return models.VideoMetadata{}, err
	}
	c.Wait()

	switch {
	case cbErr != nil:
		return models.VideoMetadata{}, cbErr
	case !decoded || video.Title == "":
		return models.VideoMetadata{}, fmt.Errorf("mirror %q returned no title", host)
	}

	m := models.VideoMetadata{
		Title:           video.Title,
		Uploader:        video.Author,
		DurationSeconds: video.LengthSeconds,
		ViewCount:       video.ViewCount,
		LikeCount:       video.LikeCount,
		ExternalID:      id,
		ThumbnailURL:    YouTubeThumbnail(id),
	}
	for _, th := range video.VideoThumbnails {
		if th.Quality == "high" && th.URL != "" {
			m.ThumbnailURL = th.URL
			break
		}
	}
	if video.Published > 0 {
		m.UploadDate = time.Unix(video.Published, 0).UTC().Format("2006-01-02")
	}
	return m, nil
}
