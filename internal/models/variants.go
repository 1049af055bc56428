package models

import "time"

// VariantKind distinguishes JSON-producing from file-producing invocations.
type VariantKind int

// Variant kinds.
const (
	KindInfo VariantKind = iota
	KindDownload
)

// CommandVariant is one ordered attempt against an external tool.
type CommandVariant struct {
	Name        string
	Binary      string
	Args        []string
	ExpectsJSON bool
	UserAgent   string
	OutputPath  string
}

// ExecutionResult is what a single attempt produced.
type ExecutionResult struct {
	Variant      string
	Attempt      int
	ExitCode     int
	Stdout       []byte
	Stderr       []byte
	ArtifactPath string
	ArtifactSize int64
	Duration     time.Duration
}
