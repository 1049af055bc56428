package downloads

import (
	"bytes"
	"context"

	"fetcharr/internal/command/execute"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/models"
)

// ToolStatus describes one external dependency.
type ToolStatus struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CheckTools probes the extractor and transcoder versions.
func (s *Service) CheckTools(ctx context.Context) []ToolStatus {
	out := []ToolStatus{s.probe(ctx, "yt-dlp", s.builder.VersionCommand())}
	if v, ok := s.builder.TranscoderVersionCommand(); ok {
		out = append(out, s.probe(ctx, "ffmpeg", v))
	} else {
		out = append(out, ToolStatus{Name: "ffmpeg", Error: "not found in PATH"})
	}
	return out
}

// UpdateExtractor runs the extractor's self-update and returns its output.
func (s *Service) UpdateExtractor(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.UpdateTimeout)
	defer cancel()

	res, err := s.executor.RunWithFallback(ctx, []models.CommandVariant{s.builder.UpdateCommand()}, execute.ExitZero)
	if err != nil {
		return string(res.Stderr), err
	}
	return string(bytes.TrimSpace(res.Stdout)), nil
}

func (s *Service) probe(ctx context.Context, name string, v models.CommandVariant) ToolStatus {
	ctx, cancel := context.WithTimeout(ctx, consts.VersionCheckTimeout)
	defer cancel()

	st := ToolStatus{Name: name, Path: v.Binary}
	res, err := s.executor.RunWithFallback(ctx, []models.CommandVariant{v}, execute.ExitZero)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Installed = true
	st.Version = firstLine(res.Stdout)
	return st
}

func firstLine(b []byte) string {
	b = bytes.TrimSpace(b)
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	if len(b) > 200 {
		b = b[:200]
	}
	return string(bytes.TrimSpace(b))
}
