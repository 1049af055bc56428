// Package logger holds the program logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Pl holds the global *ProgramLogger variable.
var Pl = New(io.Discard, "fetcharr")

// LoggingConfig describes where program logs go.
type LoggingConfig struct {
	LogFilePath string
	MaxSizeMB   int
	MaxBackups  int
	Console     io.Writer
	Program     string
}

// ProgramLogger is a leveled printf-style logger.
//
// D messages are only written when their level is at or below the debug level.
type ProgramLogger struct {
	zl      zerolog.Logger
	debug   atomic.Int32
	program string
}

// New returns a ProgramLogger writing to w.
func New(w io.Writer, program string) *ProgramLogger {
	pl := &ProgramLogger{
		zl:      zerolog.New(w).With().Timestamp().Str("program", program).Logger(),
		program: program,
	}
	return pl
}

// SetupLogging builds a ProgramLogger writing to the console and a rotating log file.
func SetupLogging(cfg LoggingConfig) (*ProgramLogger, error) {
	if cfg.LogFilePath == "" {
		return nil, fmt.Errorf("no log file path provided for %s", cfg.Program)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %q: %w", cfg.LogFilePath, err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   false,
	}

	writers := []io.Writer{fileWriter}
	if cfg.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        cfg.Console,
			TimeFormat: time.DateTime,
		})
	}

	pl := New(zerolog.MultiLevelWriter(writers...), cfg.Program)
	pl.zl.Info().Msgf("=========== %s ===========", time.Now().Format(time.RFC1123Z))
	return pl, nil
}

// Zerolog exposes the underlying logger for middleware that needs it.
func (pl *ProgramLogger) Zerolog() zerolog.Logger {
	return pl.zl
}

// SetDebugLevel sets the highest D level which will be written.
func (pl *ProgramLogger) SetDebugLevel(level int) {
	pl.debug.Store(int32(level))
}

// DebugLevel returns the current debug level.
func (pl *ProgramLogger) DebugLevel() int {
	return int(pl.debug.Load())
}

// E logs an error.
func (pl *ProgramLogger) E(format string, args ...any) {
	pl.zl.Error().Msgf(format, args...)
}

// W logs a warning.
func (pl *ProgramLogger) W(format string, args ...any) {
	pl.zl.Warn().Msgf(format, args...)
}

// I logs an info message.
func (pl *ProgramLogger) I(format string, args ...any) {
	pl.zl.Info().Msgf(format, args...)
}

// S logs a success message.
func (pl *ProgramLogger) S(format string, args ...any) {
	pl.zl.Info().Bool("success", true).Msgf(format, args...)
}

// D logs a debug message if level is within the configured debug level.
func (pl *ProgramLogger) D(level int, format string, args ...any) {
	if level > pl.DebugLevel() {
		return
	}
	pl.zl.Debug().Int("level", level).Msgf(format, args...)
}
