// Package paths initializes fetcharr's filepaths, directories, etc.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fetcharr/internal/domain/consts"
)

const (
	fDir     = ".fetcharr"
	fDBFile  = "fetcharr.db"
	fLogFile = "fetcharr.log"
)

// File and directory path strings.
var (
	HomeFetcharrDir string
	DBFilePath      string
	LogFilePath     string
	DefaultTempDir  string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}

	// Home dir ~/.fetcharr
	HomeFetcharrDir = filepath.Join(userHomeDir, fDir)
	if _, err := os.Stat(HomeFetcharrDir); os.IsNotExist(err) {
		if err := os.MkdirAll(HomeFetcharrDir, consts.PermsHomeProgDir); err != nil {
			return fmt.Errorf("failed to make directories: %w", err)
		}
	}

	// Main files
	DBFilePath = filepath.Join(HomeFetcharrDir, fDBFile)
	LogFilePath = filepath.Join(HomeFetcharrDir, fLogFile)
	DefaultTempDir = filepath.Join(os.TempDir(), consts.ProgramName)
	return nil
}

// LogFileIn returns the log file path inside dir, or the default when dir is empty.
func LogFileIn(dir string) string {
	if dir == "" {
		return LogFilePath
	}
	return filepath.Join(dir, fLogFile)
}

// EnsureDir creates dir with the given permissions if it does not exist.
func EnsureDir(dir string, perm os.FileMode) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, perm); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat directory %q: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("path %q exists and is not a directory", dir)
	}
	return nil
}
