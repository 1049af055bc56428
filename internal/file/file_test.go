package file

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSized(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o600); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

func TestFindArtifactIgnoresPartials(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, tmpl := NewArtifactTemplate(dir)
	base := strings.TrimSuffix(tmpl, "%(ext)s")

	writeSized(t, base+"mp4.part", 5000)
	writeSized(t, base+"f137.mp4", 9000)
	if _, _, ok := FindArtifact(tmpl); ok {
		t.Fatalf("partial and intermediate files must not count as artifacts")
	}

	writeSized(t, base+"mp4", 1200)
	path, size, ok := FindArtifact(tmpl)
	if !ok || path != base+"mp4" || size != 1200 {
		t.Fatalf("FindArtifact = (%q, %d, %v)", path, size, ok)
	}

	if err := RemoveArtifacts(tmpl, path); err != nil {
		t.Fatalf("RemoveArtifacts: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("kept artifact was removed: %v", err)
	}
	for _, gone := range []string{base + "mp4.part", base + "f137.mp4"} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("%q should have been removed", gone)
		}
	}

	if err := RemoveArtifacts(tmpl, ""); err != nil {
		t.Fatalf("RemoveArtifacts: %v", err)
	}
	if _, _, ok := FindArtifact(tmpl); ok {
		t.Fatalf("no artifact should remain")
	}
}

func TestFindArtifactLiteralPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "fixed.mp4")
	if _, _, ok := FindArtifact(p); ok {
		t.Fatalf("missing literal path should not be found")
	}
	writeSized(t, p, 10)
	if got, size, ok := FindArtifact(p); !ok || got != p || size != 10 {
		t.Fatalf("FindArtifact literal = (%q, %d, %v)", got, size, ok)
	}
}

func TestResolveRejectsOutsidePaths(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	outside := t.TempDir()
	s := NewServer(tempDir)

	const name = "download_0f8fad5b-d9cb-469f-a165-70867728950e.mp4"
	outsideFile := filepath.Join(outside, name)
	writeSized(t, outsideFile, 2000)

	bad := []string{
		"",
		outsideFile,
		"../" + name,
		"sub/" + name,
		tempDir + "/../" + filepath.Base(outside) + "/" + name,
		tempDir + "//" + name,
		"/etc/passwd",
		"download_notauuid.mp4",
		name + "\x00.txt",
		`..\` + name,
	}
	for _, ref := range bad {
		if _, err := s.Resolve(ref); !errors.Is(err, ErrPathViolation) {
			t.Errorf("Resolve(%q) err = %v, want ErrPathViolation", ref, err)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/serve", nil)
	if err := s.Serve(rec, req, outsideFile, "x.mp4"); !errors.Is(err, ErrPathViolation) {
		t.Fatalf("Serve outside file err = %v", err)
	}
	if _, err := os.Stat(outsideFile); err != nil {
		t.Fatalf("file outside the temp dir must be untouched: %v", err)
	}

	for _, good := range []string{name, filepath.Join(tempDir, name)} {
		got, err := s.Resolve(good)
		if err != nil || got != filepath.Join(tempDir, name) {
			t.Errorf("Resolve(%q) = (%q, %v)", good, got, err)
		}
	}
}

func TestServeStreamsAndDeletes(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	s := NewServer(tempDir)
	name := "download_0f8fad5b-d9cb-469f-a165-70867728950e.mp3"
	p := filepath.Join(tempDir, name)
	writeSized(t, p, 4096)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/serve", nil)
	if err := s.Serve(rec, req, name, `My "Song".mp3`); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	if rec.Body.Len() != 4096 {
		t.Fatalf("body length = %d, want 4096", rec.Body.Len())
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "My Song") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("artifact should be deleted after serving")
	}

	rec = httptest.NewRecorder()
	if err := s.Serve(rec, req, name, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second serve err = %v, want ErrNotFound", err)
	}
}

func TestSweepStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := filepath.Join(dir, "download_old.mp4")
	fresh := filepath.Join(dir, "download_new.mp4")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{old, fresh, other} {
		writeSized(t, p, 10)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(other, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	n, err := SweepStale(dir, time.Hour, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("SweepStale = (%d, %v), want (1, nil)", n, err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("stale artifact should be gone")
	}
	for _, p := range []string{fresh, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%q should remain: %v", p, err)
		}
	}

	if n, err := SweepStale(filepath.Join(dir, "missing"), time.Hour, time.Now()); err != nil || n != 0 {
		t.Fatalf("missing dir should be a no-op, got (%d, %v)", n, err)
	}
}
