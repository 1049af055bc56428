// Package metadata retrieves and normalizes video information.
package metadata

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/models"

	"github.com/araddon/dateparse"
)

var (
	nonTitleChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// SanitizeTitle makes a title safe to use as a file name.
//
// Everything except word characters, spaces and hyphens is stripped, whitespace runs become
// single underscores, and the result is trimmed and capped at 100 characters.
func SanitizeTitle(title string) string {
	s := nonTitleChars.ReplaceAllString(title, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_-")
	if len(s) > consts.MaxTitleLength {
		s = strings.Trim(s[:consts.MaxTitleLength], "_-")
	}
	if s == "" {
		s = "video_" + strconv.FormatInt(nowFunc().Unix(), 10)
	}
	return s
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatUploadDate converts extractor dates (e.g. 20240115) to 2006-01-02.
//
// Unparseable input is returned unchanged.
func FormatUploadDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

// extractorInfo is the subset of the extractor's JSON dump we use.
type extractorInfo struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Uploader   string   `json:"uploader"`
	Channel    string   `json:"channel"`
	Duration   *float64 `json:"duration"`
	UploadDate string   `json:"upload_date"`
	ViewCount  *int64   `json:"view_count"`
	LikeCount  *int64   `json:"like_count"`
	Thumbnail  string   `json:"thumbnail"`
	Ext        string   `json:"ext"`
}

// ParseExtractorJSON decodes the first JSON object in raw.
func ParseExtractorJSON(raw []byte) (models.VideoMetadata, error) {
	var info extractorInfo
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(raw)))
	if err := dec.Decode(&info); err != nil {
		return models.VideoMetadata{}, fmt.Errorf("failed to decode extractor output: %w", err)
	}

	m := models.VideoMetadata{
		Title:        info.Title,
		Uploader:     info.Uploader,
		UploadDate:   info.UploadDate,
		ThumbnailURL: info.Thumbnail,
		ExternalID:   info.ID,
		Extension:    info.Ext,
	}
	if m.Uploader == "" {
		m.Uploader = info.Channel
	}
	if info.Duration != nil {
		m.DurationSeconds = int64(math.Round(*info.Duration))
	}
	if info.ViewCount != nil {
		m.ViewCount = *info.ViewCount
	}
	if info.LikeCount != nil {
		m.LikeCount = *info.LikeCount
	}
	return m, nil
}

// Normalize fills defaults and derived fields on m.
func Normalize(m *models.VideoMetadata, req models.DownloadRequest) {
	m.Platform = req.Platform
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		m.Title = req.Platform.DisplayName() + " Content"
	}
	if m.Uploader == "" {
		m.Uploader = "Unknown"
	}
	if m.ExternalID == "" {
		sum := md5.Sum([]byte(req.URL))
		m.ExternalID = hex.EncodeToString(sum[:])
	}
	m.Duration = FormatDuration(m.DurationSeconds)
	m.UploadDate = FormatUploadDate(m.UploadDate)
	m.SanitizedTitle = SanitizeTitle(m.Title)
}
