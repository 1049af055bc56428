package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fetcharr/internal/domain/consts"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := InitDB(filepath.Join(t.TempDir(), "fetcharr.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestInitDBIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fetcharr.db")
	for i := 0; i < 2; i++ {
		d, err := InitDB(path)
		if err != nil {
			t.Fatalf("InitDB run %d: %v", i, err)
		}
		var rows int
		if err := d.DB.QueryRow(`SELECT COUNT(*) FROM program`).Scan(&rows); err != nil {
			t.Fatalf("count program rows: %v", err)
		}
		if rows != 1 {
			t.Fatalf("expected exactly one program row, got %d", rows)
		}
		d.Close()
	}
}

func TestProgControlSingleInstance(t *testing.T) {
	t.Parallel()

	d := openTestDB(t)
	first := NewProgController(d.DB)
	if _, err := first.Start(":8827"); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	second := NewProgController(d.DB)
	if _, err := second.Start(":8828"); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	if err := first.Quit(); err != nil {
		t.Fatalf("Quit: %v", err)
	}
	if _, err := second.Start(":8828"); err != nil {
		t.Fatalf("Start after Quit: %v", err)
	}
}

func TestProgControlReclaimsStaleRow(t *testing.T) {
	t.Parallel()

	d := openTestDB(t)
	crashed := NewProgController(d.DB)
	crashed.now = func() time.Time { return time.Now().Add(-consts.StaleHeartbeat - time.Minute) }
	if _, err := crashed.Start(":8827"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	next := NewProgController(d.DB)
	if _, err := next.Start(":8827"); err != nil {
		t.Fatalf("stale row should be reclaimed: %v", err)
	}
	if err := next.UpdateHeartbeat(); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}
}
