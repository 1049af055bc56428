package models

// VideoMetadata is the normalized info record returned to callers.
type VideoMetadata struct {
	Title           string      `json:"title"`
	Uploader        string      `json:"uploader"`
	DurationSeconds int64       `json:"duration_seconds"`
	Duration        string      `json:"duration"`
	UploadDate      string      `json:"upload_date"`
	ViewCount       int64       `json:"view_count"`
	LikeCount       int64       `json:"like_count"`
	ThumbnailURL    string      `json:"thumbnail"`
	SanitizedTitle  string      `json:"sanitized_title"`
	ExternalID      string      `json:"ext_id"`
	Platform        PlatformTag `json:"platform"`
	Extension       string      `json:"ext,omitempty"`
	Synthetic       bool        `json:"synthetic"`
	Source          string      `json:"source"`
}
