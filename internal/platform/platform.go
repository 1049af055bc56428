// Package platform maps URLs to the platform whose variant tables apply.
package platform

import (
	"net/url"
	"strings"

	"fetcharr/internal/models"

	"golang.org/x/net/publicsuffix"
)

type fragment struct {
	needle string
	tag    models.PlatformTag
}

// fragments are matched in order against the lowercased URL.
var fragments = []fragment{
	{"youtube.com", models.PlatformYouTube},
	{"youtu.be", models.PlatformYouTube},
	{"tiktok.com", models.PlatformTikTok},
	{"instagram.com", models.PlatformInstagram},
	{"facebook.com", models.PlatformFacebook},
	{"fb.watch", models.PlatformFacebook},
}

// Classify returns the platform tag for rawURL and whether it is a YouTube Shorts link.
//
// Unmatched URLs are generic, never an error.
func Classify(rawURL string) (tag models.PlatformTag, shorts bool) {
	lower := strings.ToLower(rawURL)
	tag = models.PlatformGeneric
	for _, f := range fragments {
		if strings.Contains(lower, f.needle) {
			tag = f.tag
			break
		}
	}
	if tag == models.PlatformYouTube && strings.Contains(lower, "/shorts/") {
		shorts = true
	}
	return tag, shorts
}

// ExtractYouTubeID pulls the video ID from watch, shorts and youtu.be links.
func ExtractYouTubeID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	if v := u.Query().Get("v"); v != "" {
		return v, true
	}

	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", false
	}
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	switch {
	case strings.HasSuffix(host, "youtu.be"):
		return last, last != ""
	case len(segments) >= 2 && segments[len(segments)-2] == "shorts":
		return last, last != ""
	}
	return "", false
}

// Validate checks that rawURL is an absolute http(s) URL.
func Validate(rawURL string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, true
	}
	return nil, false
}

// Allowed reports whether the URL's registrable domain is in allowlist.
//
// An empty allowlist permits every host.
func Allowed(u *url.URL, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	host := NormalizeDomain(u.Hostname())
	for _, a := range allowlist {
		if NormalizeDomain(a) == host {
			return true
		}
	}
	return false
}

// NormalizeDomain extracts the eTLD+1 (effective top-level domain + 1 label).
//
// e.g., m.youtube.com -> youtube.com, www.bbc.co.uk -> bbc.co.uk.
func NormalizeDomain(rawDomain string) string {
	rawDomain = strings.TrimPrefix(strings.TrimSpace(rawDomain), ".")
	if domain, err := publicsuffix.EffectiveTLDPlusOne(rawDomain); err == nil {
		return strings.ToLower(domain)
	}
	return strings.ToLower(rawDomain)
}
