package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"

	"github.com/Masterminds/squirrel"
)

// SQLiteLedger stores hits in the rate_limit_hits table.
type SQLiteLedger struct {
	db     *sql.DB
	mu     sync.Mutex
	limit  int
	window time.Duration
}

// NewSQLiteLedger returns a ledger over an initialized database.
func NewSQLiteLedger(db *sql.DB, limit int, window time.Duration) *SQLiteLedger {
	return &SQLiteLedger{db: db, limit: limit, window: window}
}

// Allow prunes the address's expired hits, counts the rest and records a new hit if under the limit.
func (l *SQLiteLedger) Allow(ctx context.Context, addr string, now time.Time) (dec Decision, err error) {
	dec.Limit = l.limit
	cutoff := now.Add(-l.window).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return dec, fmt.Errorf("failed to begin rate limit transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Pl.E("Panic rollback failed for rate limit ledger: %v", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Pl.E("Rate limit rollback failed after original error %v: %v", err, rbErr)
			}
		}
	}()

	if _, err = squirrel.
		Delete(consts.DBRateLimitHits).
		Where(squirrel.Eq{consts.QHitAddress: addr}).
		Where(squirrel.LtOrEq{consts.QHitAt: cutoff}).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return dec, fmt.Errorf("failed to prune hits for %q: %w", addr, err)
	}

	var (
		count  int
		oldest sql.NullInt64
	)
	if err = squirrel.
		Select("COUNT(*)", "MIN("+consts.QHitAt+")").
		From(consts.DBRateLimitHits).
		Where(squirrel.Eq{consts.QHitAddress: addr}).
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&count, &oldest); err != nil {
		return dec, fmt.Errorf("failed to count hits for %q: %w", addr, err)
	}

	if count >= l.limit {
		if oldest.Valid {
			dec.RetryAfter = retryAfter(time.Unix(0, oldest.Int64), now, l.window)
		}
		if err = tx.Commit(); err != nil {
			return dec, fmt.Errorf("failed to commit rate limit check: %w", err)
		}
		return dec, nil
	}

	if _, err = squirrel.
		Insert(consts.DBRateLimitHits).
		Columns(consts.QHitAddress, consts.QHitAt).
		Values(addr, now.UnixNano()).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return dec, fmt.Errorf("failed to record hit for %q: %w", addr, err)
	}

	if err = tx.Commit(); err != nil {
		return dec, fmt.Errorf("failed to commit rate limit hit: %w", err)
	}

	dec.Allowed = true
	dec.Remaining = l.limit - count - 1
	return dec, nil
}

// Prune deletes every hit older than the window.
func (l *SQLiteLedger) Prune(ctx context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := squirrel.
		Delete(consts.DBRateLimitHits).
		Where(squirrel.LtOrEq{consts.QHitAt: now.Add(-l.window).UnixNano()}).
		RunWith(l.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune rate limit hits: %w", err)
	}
	return res.RowsAffected()
}

// Close is a no-op; the database handle belongs to the caller.
func (l *SQLiteLedger) Close() error { return nil }
