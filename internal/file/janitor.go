package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
)

// SweepStale deletes artifacts in tempDir last modified before now-ttl.
//
// Returns the number of files removed.
func SweepStale(tempDir string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read temp directory %q: %w", tempDir, err)
	}

	cutoff := now.Add(-ttl)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), consts.ArtifactPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		p := filepath.Join(tempDir, e.Name())
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Pl.I("Swept %d stale artifact(s) from %q", removed, tempDir)
	}
	return removed, errors.Join(errs...)
}
