// Package file contains artifact bookkeeping and delivery.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"

	"github.com/google/uuid"
)

// extPlaceholder is the extractor's output template token for the final extension.
const extPlaceholder = "%(ext)s"

// partialSuffixes mark files the extractor is still writing or abandoned.
var partialSuffixes = [...]string{".part", ".ytdl", ".temp", ".tmp"}

// NewArtifactTemplate returns a fresh per-request output template inside tempDir.
func NewArtifactTemplate(tempDir string) (id, template string) {
	id = uuid.NewString()
	return id, filepath.Join(tempDir, consts.ArtifactPrefix+id+"."+extPlaceholder)
}

// stem returns the template without its extension placeholder, keeping the trailing dot.
func stem(template string) string {
	return strings.TrimSuffix(template, extPlaceholder)
}

// matches returns every file belonging to the template, complete or not.
func matches(template string) ([]string, error) {
	if !strings.HasSuffix(template, extPlaceholder) {
		if _, err := os.Stat(template); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		return []string{template}, nil
	}
	return filepath.Glob(globEscape(stem(template)) + "*")
}

// FindArtifact locates the finished file for template.
//
// Intermediate format files (name.f137.mp4) and partial downloads are ignored.
func FindArtifact(template string) (path string, size int64, ok bool) {
	found, err := matches(template)
	if err != nil {
		logger.Pl.D(2, "Could not list artifacts for %q: %v", template, err)
		return "", 0, false
	}

	prefix := stem(template)
	for _, p := range found {
		if isPartial(p) {
			continue
		}
		if strings.HasSuffix(template, extPlaceholder) {
			ext := strings.TrimPrefix(p, prefix)
			if ext == "" || strings.Contains(ext, ".") {
				continue
			}
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Size() > size || path == "" {
			path, size = p, info.Size()
		}
	}
	return path, size, path != ""
}

// RemoveArtifacts deletes every file belonging to template except keep.
func RemoveArtifacts(template, keep string) error {
	found, err := matches(template)
	if err != nil {
		return fmt.Errorf("failed to list artifacts for %q: %w", template, err)
	}
	var errs []error
	for _, p := range found {
		if p == keep {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		logger.Pl.D(3, "Removed artifact %q", p)
	}
	return errors.Join(errs...)
}

// Extension returns the final extension of an artifact path without the dot.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func isPartial(p string) bool {
	for _, s := range partialSuffixes {
		if strings.HasSuffix(p, s) {
			return true
		}
	}
	return false
}

// globEscape escapes glob metacharacters so a literal path can prefix a pattern.
func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}
