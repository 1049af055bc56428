package metadata

import (
	"context"

	"fetcharr/internal/command/builder"
	"fetcharr/internal/command/execute"
	"fetcharr/internal/models"
)

// ExtractorProvider runs the extractor's JSON-producing variants.
type ExtractorProvider struct {
	builder  *builder.Builder
	executor *execute.Executor
}

// NewExtractorProvider returns the primary metadata provider.
func NewExtractorProvider(b *builder.Builder, e *execute.Executor) *ExtractorProvider {
	return &ExtractorProvider{builder: b, executor: e}
}

// Name implements Provider.
func (p *ExtractorProvider) Name() string { return "ytdlp" }

// Supports implements Provider.
func (p *ExtractorProvider) Supports(models.DownloadRequest) bool { return true }

// Fetch implements Provider.
func (p *ExtractorProvider) Fetch(ctx context.Context, req models.DownloadRequest) (models.VideoMetadata, error) {
	variants := p.builder.Variants(req, models.KindInfo, "")
	res, err := p.executor.RunWithFallback(ctx, variants, execute.JSONObject)
	if err != nil {
		return models.VideoMetadata{}, err
	}
	return ParseExtractorJSON(res.Stdout)
}
