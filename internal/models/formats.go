package models

import (
	"fmt"
	"strings"
)

// FormatKey names a format profile.
type FormatKey string

// Format keys.
const (
	FormatBest      FormatKey = "best"
	FormatMedium    FormatKey = "medium"
	FormatLow       FormatKey = "low"
	FormatAudioOnly FormatKey = "audio"
)

// FormatProfile maps a format key to an extractor format expression.
type FormatProfile struct {
	Key        FormatKey `json:"key" toml:"key"`
	Label      string    `json:"label" toml:"label"`
	Expression string    `json:"format" toml:"format"`
	Extension  string    `json:"ext" toml:"ext"`
	AudioOnly  bool      `json:"audio_only" toml:"audio_only"`
}

// ParseFormatKey normalizes a user supplied format name.
//
// Empty input selects FormatBest.
func ParseFormatKey(s string) (FormatKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best":
		return FormatBest, nil
	case "medium", "720", "720p":
		return FormatMedium, nil
	case "low", "480", "480p":
		return FormatLow, nil
	case "audio", "audioonly", "audio_only", "audio-only", "mp3":
		return FormatAudioOnly, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// DefaultFormatProfiles returns the built-in profile table.
func DefaultFormatProfiles() map[FormatKey]FormatProfile {
	return map[FormatKey]FormatProfile{
		FormatBest: {
			Key:        FormatBest,
			Label:      "Best Quality",
			Expression: "bestvideo+bestaudio/best",
			Extension:  "mp4",
		},
		FormatMedium: {
			Key:        FormatMedium,
			Label:      "Medium Quality (720p)",
			Expression: "bestvideo[height<=720]+bestaudio/best[height<=720]",
			Extension:  "mp4",
		},
		FormatLow: {
			Key:        FormatLow,
			Label:      "Low Quality (480p)",
			Expression: "bestvideo[height<=480]+bestaudio/best[height<=480]",
			Extension:  "mp4",
		},
		FormatAudioOnly: {
			Key:        FormatAudioOnly,
			Label:      "Audio Only (MP3)",
			Expression: "bestaudio",
			Extension:  "mp3",
			AudioOnly:  true,
		},
	}
}
