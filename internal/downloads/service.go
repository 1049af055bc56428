// Package downloads orchestrates info retrieval and media downloads.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"fetcharr/internal/blocking"
	"fetcharr/internal/command/builder"
	"fetcharr/internal/command/execute"
	"fetcharr/internal/config"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/domain/paths"
	"fetcharr/internal/file"
	"fetcharr/internal/models"
)

// InfoSource returns metadata for a request.
type InfoSource interface {
	GetInfo(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error)
}

// Service runs info and download pipelines for single requests.
type Service struct {
	info     InfoSource
	builder  *builder.Builder
	executor *execute.Executor
	breaker  *blocking.Breaker
	blockCtx blocking.BlockContext
	tempDir  string
	minBytes int64
}

// NewService wires the orchestrator. breaker may be nil.
func NewService(s config.Settings, info InfoSource, b *builder.Builder, e *execute.Executor, breaker *blocking.Breaker) *Service {
	minBytes := s.MinArtifactBytes
	if minBytes <= 0 {
		minBytes = consts.MinArtifactBytes
	}
	return &Service{
		info:     info,
		builder:  b,
		executor: e,
		breaker:  breaker,
		blockCtx: blocking.ContextFor(s.CookiesFile != ""),
		tempDir:  s.TempDir,
		minBytes: minBytes,
	}
}

// Info returns metadata for req, honoring platform cooldowns.
func (s *Service) Info(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error) {
	if err := s.checkBlocked(req.Platform); err != nil {
		return models.VideoMetadata{}, err
	}
	m, err := s.info.GetInfo(ctx, req)
	if err != nil {
		s.report(req.Platform, err)
		return models.VideoMetadata{}, err
	}
	return m, nil
}

// Download fetches metadata, then runs the download variants.
//
// No download is attempted without metadata. On success the caller owns the artifact.
func (s *Service) Download(ctx context.Context, req models.DownloadRequest) (models.Artifact, error) {
	if err := s.checkBlocked(req.Platform); err != nil {
		return models.Artifact{}, &DownloadError{Platform: req.Platform, Stage: StageInfo, Cause: err}
	}

	meta, err := s.info.GetInfo(ctx, req)
	if err != nil {
		s.report(req.Platform, err)
		return models.Artifact{}, &DownloadError{Platform: req.Platform, Stage: StageInfo, Cause: err}
	}

	if err := paths.EnsureDir(s.tempDir, consts.PermsTempDir); err != nil {
		return models.Artifact{}, &DownloadError{Platform: req.Platform, Stage: StageDownload, Cause: err}
	}

	id, template := file.NewArtifactTemplate(s.tempDir)
	logger.Pl.I("Downloading %q (%s, format %s) as %s", req.URL, req.Platform, req.Format.Key, id)

	variants := s.builder.Variants(req, models.KindDownload, template)
	res, err := s.executor.RunWithFallback(ctx, variants, execute.ArtifactAtLeast(s.minBytes))
	if err != nil {
		if rmErr := file.RemoveArtifacts(template, ""); rmErr != nil {
			logger.Pl.E("Failed to clean up after failed download %s: %v", id, rmErr)
		}
		s.report(req.Platform, err)
		return models.Artifact{}, &DownloadError{Platform: req.Platform, Stage: StageDownload, Cause: err}
	}

	ext := file.Extension(res.ArtifactPath)
	a := models.Artifact{
		Path:      res.ArtifactPath,
		FileName:  filepath.Base(res.ArtifactPath),
		Name:      meta.SanitizedTitle + "." + ext,
		Size:      res.ArtifactSize,
		Extension: ext,
		CreatedAt: time.Now(),
	}
	logger.Pl.S("Downloaded %q to %s (%d bytes) using variant %q", req.URL, a.FileName, a.Size, res.Variant)
	return a, nil
}

func (s *Service) checkBlocked(p models.PlatformTag) error {
	if blocked, _, remaining := s.breaker.IsBlocked(p, s.blockCtx); blocked {
		return fmt.Errorf("%w: %s for another %v", ErrPlatformBlocked, p.DisplayName(), remaining.Round(time.Second))
	}
	return nil
}

// report trips the breaker when the platform flagged the request as automated.
func (s *Service) report(p models.PlatformTag, err error) {
	if errors.Is(err, execute.ErrBlocked) {
		s.breaker.Block(p, s.blockCtx)
	}
}
