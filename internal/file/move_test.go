package file

import (
	"os"
	"path/filepath"
	"testing"

	"fetcharr/internal/models"
)

func TestMoveArtifact(t *testing.T) {
	t.Parallel()

	tmp, out := t.TempDir(), t.TempDir()
	src := filepath.Join(tmp, "download_x.mp4")
	writeSized(t, src, 1500)

	dest, err := MoveArtifact(models.Artifact{Path: src, Name: "../My_Clip.mp4"}, out)
	if err != nil {
		t.Fatalf("MoveArtifact: %v", err)
	}
	if dest != filepath.Join(out, "My_Clip.mp4") {
		t.Fatalf("dest = %q, name must not escape the output dir", dest)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() != 1500 {
		t.Fatalf("moved file missing or truncated: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should be gone after the move")
	}
}
