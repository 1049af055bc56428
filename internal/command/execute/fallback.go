// Package execute runs extractor variants in priority order until one succeeds.
package execute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os/exec"
	"time"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/file"
	"fetcharr/internal/models"
)

// Predicate decides whether an attempt produced a usable result.
type Predicate func(res *models.ExecutionResult) bool

// JSONObject succeeds when stdout starts with a non-empty JSON object.
func JSONObject(res *models.ExecutionResult) bool {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(res.Stdout)))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return false
	}
	return len(obj) > 0
}

// ArtifactAtLeast succeeds on a clean exit with an artifact of at least minBytes.
func ArtifactAtLeast(minBytes int64) Predicate {
	return func(res *models.ExecutionResult) bool {
		return res.ExitCode == 0 && res.ArtifactPath != "" && res.ArtifactSize >= minBytes
	}
}

// Executor runs variant chains with a per-attempt timeout.
type Executor struct {
	runner  Runner
	timeout time.Duration
}

// New returns an Executor. A zero timeout leaves attempts bounded only by ctx.
func New(r Runner, timeout time.Duration) *Executor {
	if r == nil {
		r = ExecRunner{}
	}
	return &Executor{runner: r, timeout: timeout}
}

// RunWithFallback tries each variant in order and returns the first result satisfying pred.
//
// Failed attempts have their artifacts deleted before the next variant starts, so at most
// one artifact exists per chain. Chains stop early when the tool is missing or ctx ends.
// A timed-out attempt moves on to the next variant like any other failure.
func (e *Executor) RunWithFallback(ctx context.Context, variants []models.CommandVariant, pred Predicate) (models.ExecutionResult, error) {
	if len(variants) == 0 {
		return models.ExecutionResult{}, &ExecutionError{Kind: KindFailed, Cause: ErrNoVariants, Diagnostic: ErrNoVariants.Error()}
	}

	var (
		last     models.ExecutionResult
		worst    = KindFailed
		cause    error
		lastDiag string
		attempts int
	)

	for i, v := range variants {
		attempts = i + 1

		res, runErr := e.attempt(ctx, v)
		res.Attempt = attempts
		last = res

		if runErr == nil && pred(&res) {
			if v.OutputPath != "" {
				if err := file.RemoveArtifacts(v.OutputPath, res.ArtifactPath); err != nil {
					logger.Pl.W("Could not clean stray files for %q: %v", v.Name, err)
				}
			}
			logger.Pl.D(1, "Variant %q succeeded on attempt %d/%d in %v", v.Name, attempts, len(variants), res.Duration)
			return res, nil
		}

		kind, diag := e.diagnose(ctx, res, runErr)
		if diag != "" {
			lastDiag = diag
		}
		if kind > worst {
			worst = kind
			cause = runErr
		}

		logger.Pl.W("Attempt %d/%d (%s) failed [%s, exit %d]: %s", attempts, len(variants), v.Name, kind, res.ExitCode, diag)

		if v.OutputPath != "" {
			if err := file.RemoveArtifacts(v.OutputPath, ""); err != nil {
				logger.Pl.E("Failed to remove partial artifact for %q: %v", v.Name, err)
			}
		}

		if kind == KindToolMissing || kind == KindCanceled {
			return last, &ExecutionError{
				Kind:        kind,
				Attempts:    attempts,
				LastVariant: v.Name,
				ExitCode:    res.ExitCode,
				Diagnostic:  lastDiag,
				Cause:       runErr,
			}
		}
	}

	return last, &ExecutionError{
		Kind:        worst,
		Attempts:    attempts,
		LastVariant: last.Variant,
		ExitCode:    last.ExitCode,
		Diagnostic:  lastDiag,
		Cause:       cause,
	}
}

// attempt runs one variant under the per-attempt timeout and records its artifact.
func (e *Executor) attempt(ctx context.Context, v models.CommandVariant) (models.ExecutionResult, error) {
	attemptCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, err := e.runner.Run(attemptCtx, v)
	res.Variant = v.Name

	if v.OutputPath != "" {
		if path, size, ok := file.FindArtifact(v.OutputPath); ok {
			res.ArtifactPath = path
			res.ArtifactSize = size
		}
	}
	return res, err
}

// diagnose classifies an attempt failure and picks the text worth logging.
func (e *Executor) diagnose(ctx context.Context, res models.ExecutionResult, runErr error) (Kind, string) {
	switch {
	case runErr == nil:
	case ctx.Err() != nil:
		return KindCanceled, ctx.Err().Error()
	case errors.Is(runErr, context.DeadlineExceeded):
		return KindTimeout, "no result within " + e.timeout.String()
	case errors.Is(runErr, exec.ErrNotFound), errors.Is(runErr, fs.ErrNotExist), errors.Is(runErr, fs.ErrPermission):
		return KindToolMissing, runErr.Error()
	default:
		return KindFailed, runErr.Error()
	}

	diag := snippet(res.Stderr)
	kind := classifyOutput(res.Stderr)
	if diag == "" {
		switch {
		case res.ExitCode != 0:
			diag = "process exited with a non-zero status"
		case res.ArtifactPath != "":
			diag = "artifact below minimum size"
		case res.ArtifactPath == "" && len(res.Stdout) == 0:
			diag = "no output produced"
		default:
			diag = "output did not satisfy the success check"
		}
	}
	return kind, diag
}

// ExitZero succeeds on a clean exit regardless of output.
func ExitZero(res *models.ExecutionResult) bool {
	return res.ExitCode == 0
}
