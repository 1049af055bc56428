package models

import "time"

// Artifact is a transient downloaded file awaiting delivery.
//
// FileName is the bare temp file name handed to the serve endpoint; Name is the
// client-facing download name.
type Artifact struct {
	Path      string    `json:"-"`
	FileName  string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Extension string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}
