package app

import (
	"context"
	"time"

	"fetcharr/internal/blocking"
	"fetcharr/internal/database"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/file"
	"fetcharr/internal/ratelimit"
)

// startHeartbeat starts the program heartbeat.
//
// Mainly useful for preventing DB lockouts.
func startHeartbeat(ctx context.Context, progControl *database.ProgControl) {
	ticker := time.NewTicker(consts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := progControl.UpdateHeartbeat(); err != nil {
				logger.Pl.E("Failed to update heartbeat for process ID %d: %v", progControl.ProcessID, err)
			}
		}
	}
}

// startJanitor periodically removes stale artifacts, expired ledger hits and expired platform blocks.
func startJanitor(ctx context.Context, tempDir string, ttl time.Duration, ledger ratelimit.Ledger, breaker *blocking.Breaker) {
	ticker := time.NewTicker(consts.JanitorInterval)
	defer ticker.Stop()
	for {
		sweep(ctx, tempDir, ttl, ledger, breaker, time.Now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweep runs one janitor pass.
func sweep(ctx context.Context, tempDir string, ttl time.Duration, ledger ratelimit.Ledger, breaker *blocking.Breaker, now time.Time) {
	if _, err := file.SweepStale(tempDir, ttl, now); err != nil {
		logger.Pl.W("Artifact sweep incomplete: %v", err)
	}
	if n, err := ledger.Prune(ctx, now); err != nil {
		logger.Pl.W("Rate limit prune failed: %v", err)
	} else if n > 0 {
		logger.Pl.D(2, "Pruned %d expired rate limit hits", n)
	}
	breaker.CleanExpiredBlocks()
}

// cleanup releases the program row, even when the server panicked.
func cleanup(progControl *database.ProgControl, startTime time.Time) {
	r := recover()
	if r != nil {
		logger.Pl.E("Panic occurred: %v", r)
	}

	if err := progControl.Quit(); err != nil {
		logger.Pl.E("!!! Failed to mark fetcharr as exited, another server can start once the heartbeat goes stale (%v): %v", consts.StaleHeartbeat, err)
	}
	logger.Pl.I("Server ran for %v", time.Since(startTime).Round(time.Second))

	if r != nil {
		panic(r)
	}
}
