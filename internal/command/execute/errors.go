package execute

import (
	"errors"
	"fmt"
	"strings"

	"fetcharr/internal/domain/consts"
)

// Kind classifies why an attempt chain failed.
type Kind int

// Failure kinds, ordered by how strongly they explain a chain failure.
const (
	KindFailed Kind = iota
	KindFormatUnsupported
	KindBlocked
	KindTimeout
	KindToolMissing
	KindCanceled
)

// Sentinel errors matched by errors.Is against an *ExecutionError.
var (
	ErrFailed            = errors.New("all variants failed")
	ErrFormatUnsupported = errors.New("requested format unsupported")
	ErrBlocked           = errors.New("platform blocked the request")
	ErrTimeout           = errors.New("external process timed out")
	ErrToolMissing       = errors.New("external tool missing or not executable")
	ErrCanceled          = errors.New("request canceled")
	ErrNoVariants        = errors.New("no variants to run")
)

func (k Kind) String() string {
	switch k {
	case KindFormatUnsupported:
		return "format-unsupported"
	case KindBlocked:
		return "blocked"
	case KindTimeout:
		return "timeout"
	case KindToolMissing:
		return "tool-missing"
	case KindCanceled:
		return "canceled"
	default:
		return "failed"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindFormatUnsupported:
		return ErrFormatUnsupported
	case KindBlocked:
		return ErrBlocked
	case KindTimeout:
		return ErrTimeout
	case KindToolMissing:
		return ErrToolMissing
	case KindCanceled:
		return ErrCanceled
	default:
		return ErrFailed
	}
}

// ExecutionError is the terminal failure of an attempt chain.
type ExecutionError struct {
	Kind        Kind
	Attempts    int
	LastVariant string
	ExitCode    int
	Diagnostic  string
	Cause       error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s after %d attempt(s)", e.Kind, e.Attempts)
	if e.LastVariant != "" {
		msg += fmt.Sprintf(" (last variant %q, exit %d)", e.LastVariant, e.ExitCode)
	}
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}

// Is matches the sentinel for e.Kind.
func (e *ExecutionError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// classifyOutput inspects stderr for known platform responses.
func classifyOutput(stderr []byte) Kind {
	lower := strings.ToLower(string(stderr))
	for _, p := range consts.BotDetectionPatterns {
		if strings.Contains(lower, p) {
			return KindBlocked
		}
	}
	for _, p := range consts.FormatUnsupportedPatterns {
		if strings.Contains(lower, p) {
			return KindFormatUnsupported
		}
	}
	return KindFailed
}

// snippet returns the last non-empty lines of output, bounded in length.
func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > consts.DiagnosticSnippetLen {
		s = "..." + s[len(s)-consts.DiagnosticSnippetLen:]
	}
	return s
}
