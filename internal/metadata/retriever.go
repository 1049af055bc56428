package metadata

import (
	"context"
	"errors"
	"fmt"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/models"
)

// ErrMetadataUnavailable is matched by errors.Is when every provider failed.
var ErrMetadataUnavailable = errors.New("metadata unavailable")

// errUnsupported is returned by providers that do not handle a platform.
var errUnsupported = errors.New("provider does not support this request")

// Provider is one source of video metadata.
type Provider interface {
	Name() string
	Supports(req models.DownloadRequest) bool
	Fetch(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error)
}

// InfoError is returned when no provider produced metadata.
//
// It unwraps to the last provider error so callers can still classify the cause.
type InfoError struct {
	Platform models.PlatformTag
	Tried    []string
	Cause    error
}

func (e *InfoError) Error() string {
	return fmt.Sprintf("failed to retrieve %s information (tried %v): %v", e.Platform.DisplayName(), e.Tried, e.Cause)
}

// Is matches ErrMetadataUnavailable.
func (e *InfoError) Is(target error) bool { return target == ErrMetadataUnavailable }

func (e *InfoError) Unwrap() error { return e.Cause }

// UserMessage is the simplified failure text shown to clients.
func (e *InfoError) UserMessage() string {
	switch e.Platform {
	case models.PlatformInstagram, models.PlatformFacebook:
		return fmt.Sprintf("Failed to retrieve %s content information. %s may require authentication.", e.Platform.DisplayName(), e.Platform.DisplayName())
	default:
		return "Failed to retrieve video information"
	}
}

// Retriever asks providers in order until one returns metadata.
type Retriever struct {
	providers []Provider
}

// NewRetriever returns a Retriever trying providers in the given order.
func NewRetriever(providers ...Provider) *Retriever {
	return &Retriever{providers: providers}
}

// Providers lists provider names in priority order.
func (r *Retriever) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// GetInfo returns normalized metadata for req.
func (r *Retriever) GetInfo(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error) {
	var (
		tried   []string
		lastErr error = errUnsupported
	)

	for _, p := range r.providers {
		if !p.Supports(req) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return models.VideoMetadata{}, &InfoError{Platform: req.Platform, Tried: tried, Cause: err}
		}

		tried = append(tried, p.Name())
		m, err := p.Fetch(ctx, req)
		if err != nil {
			logger.Pl.W("Info provider %q failed for %q: %v", p.Name(), req.URL, err)
			lastErr = err
			continue
		}

		if m.Source == "" {
			m.Source = p.Name()
		}
		Normalize(&m, req)
		if m.Synthetic {
			logger.Pl.W("Returning synthesized metadata for %q", req.URL)
		} else {
			logger.Pl.D(1, "Provider %q returned metadata for %q", p.Name(), req.URL)
		}
		return m, nil
	}

	return models.VideoMetadata{}, &InfoError{Platform: req.Platform, Tried: tried, Cause: lastErr}
}
