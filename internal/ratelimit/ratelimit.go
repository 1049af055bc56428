// Package ratelimit keeps a sliding-window request ledger per client address.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is returned to callers rejected by the ledger.
var ErrRateLimited = errors.New("rate limit exceeded")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Ledger records hits and decides whether an address may make another request.
//
// Allow must be atomic per address: concurrent callers never admit more than the limit
// within one window.
type Ledger interface {
	Allow(ctx context.Context, addr string, now time.Time) (Decision, error)
	Prune(ctx context.Context, now time.Time) (int64, error)
	Close() error
}

// Unlimited admits everything. Used when the configured limit is zero.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string, time.Time) (Decision, error) {
	return Decision{Allowed: true, Remaining: -1}, nil
}

func (Unlimited) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

func (Unlimited) Close() error { return nil }

// retryAfter is how long until the oldest hit leaves the window.
func retryAfter(oldest, now time.Time, window time.Duration) time.Duration {
	d := oldest.Add(window).Sub(now)
	if d < time.Second {
		return time.Second
	}
	return d.Round(time.Second)
}
