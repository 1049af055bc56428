package downloads

import (
	"errors"
	"fmt"

	"fetcharr/internal/command/execute"
	"fetcharr/internal/metadata"
	"fetcharr/internal/models"
)

// Sentinel errors.
var (
	ErrDownloadFailed  = errors.New("download failed")
	ErrPlatformBlocked = errors.New("platform is cooling down after bot detection")
)

// Stage names where a download can fail.
const (
	StageInfo     = "info"
	StageDownload = "download"
)

// DownloadError is the classified terminal failure of Download.
type DownloadError struct {
	Platform models.PlatformTag
	Stage    string
	Cause    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Platform.DisplayName(), e.Stage, e.Cause)
}

// Is matches ErrDownloadFailed.
func (e *DownloadError) Is(target error) bool { return target == ErrDownloadFailed }

func (e *DownloadError) Unwrap() error { return e.Cause }

// UserMessage returns the simplified text shown to clients.
func (e *DownloadError) UserMessage() string {
	return UserMessage(e.Platform, e)
}

// UserMessage maps any pipeline error to client-facing text.
func UserMessage(p models.PlatformTag, err error) string {
	var infoErr *metadata.InfoError
	switch {
	case errors.Is(err, ErrPlatformBlocked):
		return fmt.Sprintf("%s is temporarily refusing requests. Please try again later.", p.DisplayName())
	case errors.Is(err, execute.ErrTimeout):
		return "The download took too long and was stopped. Try a lower quality format."
	case errors.Is(err, execute.ErrToolMissing):
		return "The downloader is not available on this server."
	case errors.As(err, &infoErr):
		return infoErr.UserMessage()
	case errors.Is(err, execute.ErrFormatUnsupported):
		return "The requested format is not available for this video. Try another format."
	}

	switch p {
	case models.PlatformInstagram, models.PlatformFacebook:
		return fmt.Sprintf("Failed to download %s content. %s may require authentication.", p.DisplayName(), p.DisplayName())
	case models.PlatformYouTube:
		if errors.Is(err, execute.ErrBlocked) {
			return "YouTube blocked the download request. Please try again later."
		}
		return "Failed to download YouTube video."
	case models.PlatformTikTok:
		return "Failed to download TikTok video."
	default:
		return "Failed to download video."
	}
}
