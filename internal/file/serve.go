package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"fetcharr/internal/domain/logger"
)

// ErrPathViolation is returned for any serve request naming a file outside the temp directory.
var ErrPathViolation = errors.New("requested file is outside the download directory")

// ErrNotFound is returned when a valid artifact name has no file behind it.
var ErrNotFound = errors.New("file not found")

// DefaultDownloadName is used when the client supplies no name.
const DefaultDownloadName = "downloaded_video.mp4"

var artifactName = regexp.MustCompile(`^download_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[A-Za-z0-9]{1,8}$`)

// Server hands finished artifacts to clients.
type Server struct {
	tempDir string
}

// NewServer returns a Server rooted at tempDir.
func NewServer(tempDir string) *Server {
	return &Server{tempDir: filepath.Clean(tempDir)}
}

// Resolve maps a client-supplied file reference to an artifact path.
//
// It is purely lexical and never touches the filesystem. Anything that is not an exact
// artifact name, or an absolute path whose parent is exactly the temp directory, is rejected.
func (s *Server) Resolve(ref string) (string, error) {
	if ref == "" || strings.ContainsRune(ref, 0) {
		return "", ErrPathViolation
	}

	var base string
	if filepath.IsAbs(ref) {
		if filepath.Dir(ref) != s.tempDir || filepath.Clean(ref) != ref {
			return "", ErrPathViolation
		}
		base = filepath.Base(ref)
	} else {
		if strings.ContainsAny(ref, `/\`) {
			return "", ErrPathViolation
		}
		base = ref
	}

	if !artifactName.MatchString(base) {
		return "", ErrPathViolation
	}
	return filepath.Join(s.tempDir, base), nil
}

// Serve streams the artifact as an attachment and deletes it on every exit path.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, ref, downloadName string) error {
	path, err := s.Resolve(ref)
	if err != nil {
		logger.Pl.W("Rejected serve request for %q from %s", ref, r.RemoteAddr)
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to open artifact %q: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Pl.E("Failed to close artifact %q: %v", path, err)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Pl.E("Failed to delete served artifact %q: %v", path, err)
			return
		}
		logger.Pl.D(1, "Deleted served artifact %q", path)
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact %q: %w", path, err)
	}

	if downloadName = sanitizeDownloadName(downloadName); downloadName == "" {
		downloadName = DefaultDownloadName
	}

	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Cache-Control", "must-revalidate")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil {
		logger.Pl.W("Client aborted transfer of %q after %d bytes: %v", path, n, err)
		return nil
	}
	logger.Pl.S("Served %q as %q (%d bytes)", filepath.Base(path), downloadName, n)
	return nil
}

// sanitizeDownloadName keeps only the final path element and drops control characters.
func sanitizeDownloadName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
}
