package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/models"
)

// MoveArtifact moves a finished artifact into dir under its client-facing name.
//
// Falls back to copy and delete when dir is on another filesystem.
func MoveArtifact(a models.Artifact, dir string) (dest string, err error) {
	name := sanitizeDownloadName(a.Name)
	if name == "" {
		name = filepath.Base(a.Path)
	}
	dest = filepath.Join(dir, name)

	if err = os.Rename(a.Path, dest); err == nil {
		return dest, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("failed to move %q to %q: %w", a.Path, dest, err)
	}

	if err = copyFile(a.Path, dest); err != nil {
		return "", err
	}
	if rmErr := os.Remove(a.Path); rmErr != nil {
		logger.Pl.W("Copied %q but could not remove the temp file: %v", a.Path, rmErr)
	}
	return dest, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
