package database

import (
	"database/sql"
	"fmt"

	"fetcharr/internal/domain/consts"

	"github.com/Masterminds/squirrel"
)

// initProgramTable creates the single-row server instance table.
func initProgramTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS program (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        running BOOLEAN NOT NULL DEFAULT 0,
        pid INTEGER NOT NULL DEFAULT 0,
        host TEXT NOT NULL DEFAULT '',
        listen_addr TEXT NOT NULL DEFAULT '',
        started_at TIMESTAMP,
        last_heartbeat TIMESTAMP
    );
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create program table: %w", err)
	}

	seed := squirrel.
		Insert(consts.DBProgram).
		Options("OR IGNORE").
		Columns(consts.QProgID, consts.QProgRunning, consts.QProgPID).
		Values(1, false, 0).
		RunWith(tx)

	if _, err := seed.Exec(); err != nil {
		return fmt.Errorf("failed to seed program table: %w", err)
	}
	return nil
}

// initRateLimitTable creates the per-address request ledger.
//
// hit_at holds Unix nanoseconds so window comparisons stay numeric.
func initRateLimitTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS rate_limit_hits (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        address TEXT NOT NULL,
        hit_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_rate_limit_hits_address_at ON rate_limit_hits(address, hit_at);
    CREATE INDEX IF NOT EXISTS idx_rate_limit_hits_at ON rate_limit_hits(hit_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create rate limit table: %w", err)
	}
	return nil
}
