package models

// DownloadRequest is built once per incoming request.
type DownloadRequest struct {
	URL      string
	Format   FormatProfile
	Platform PlatformTag
	Shorts   bool
}

// NewDownloadRequest returns a request value.
//
// Callers pass the request by value so it cannot be altered after creation.
func NewDownloadRequest(url string, format FormatProfile, platform PlatformTag, shorts bool) DownloadRequest {
	if !platform.Valid() {
		platform = PlatformGeneric
	}
	return DownloadRequest{
		URL:      url,
		Format:   format,
		Platform: platform,
		Shorts:   shorts,
	}
}
