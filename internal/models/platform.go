package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PlatformTag identifies which variant tables apply to a URL.
type PlatformTag string

// Platform tags.
const (
	PlatformYouTube   PlatformTag = "youtube"
	PlatformTikTok    PlatformTag = "tiktok"
	PlatformInstagram PlatformTag = "instagram"
	PlatformFacebook  PlatformTag = "facebook"
	PlatformGeneric   PlatformTag = "generic"
)

var titleCaser = cases.Title(language.English)

// DisplayName returns the human readable platform name.
func (p PlatformTag) DisplayName() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformTikTok:
		return "TikTok"
	case PlatformGeneric, "":
		return "Video"
	default:
		return titleCaser.String(string(p))
	}
}

// Valid reports whether p is a known tag.
func (p PlatformTag) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformFacebook, PlatformGeneric:
		return true
	}
	return false
}
