package downloads

import (
	"errors"
	"fmt"
	"strings"

	"fetcharr/internal/config"
	"fetcharr/internal/models"
	"fetcharr/internal/platform"
)

// Request validation errors.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnsupportedDomain = errors.New("unsupported domain")
)

// ParseRequest validates raw client input and builds an immutable request.
func ParseRequest(s config.Settings, rawURL, format string) (models.DownloadRequest, error) {
	if rawURL == "" {
		return models.DownloadRequest{}, fmt.Errorf("%w: no URL provided", ErrInvalidRequest)
	}
	u, ok := platform.Validate(rawURL)
	if !ok {
		return models.DownloadRequest{}, fmt.Errorf("%w: %q is not a valid http(s) URL", ErrInvalidRequest, rawURL)
	}
	if platform.IsPrivateHost(u.Hostname()) {
		return models.DownloadRequest{}, fmt.Errorf("%w: %s is a private address", ErrUnsupportedDomain, u.Hostname())
	}
	if !platform.Allowed(u, s.AllowedDomains) {
		return models.DownloadRequest{}, fmt.Errorf("%w: %s", ErrUnsupportedDomain, u.Hostname())
	}

	key, err := models.ParseFormatKey(format)
	if err != nil {
		// Custom profiles from a profiles file use their own keys.
		key = models.FormatKey(strings.ToLower(strings.TrimSpace(format)))
	}
	profile, ok := s.Profile(key)
	if !ok {
		return models.DownloadRequest{}, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, format)
	}

	normalized := u.String()
	tag, shorts := platform.Classify(normalized)
	return models.NewDownloadRequest(normalized, profile, tag, shorts), nil
}
