package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fetcharr/internal/database"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/domain/paths"
	"fetcharr/internal/server"
)

// Serve runs the HTTP server until ctx ends.
//
// Only one server may run per database; the program row is claimed on start and released on exit.
func (a *App) Serve(ctx context.Context) error {
	startTime := time.Now()
	s := a.Settings

	if err := paths.EnsureDir(s.TempDir, consts.PermsTempDir); err != nil {
		return err
	}
	if err := paths.EnsureDir(filepath.Dir(s.DBPath), consts.PermsHomeProgDir); err != nil {
		return err
	}

	db, err := database.InitDB(s.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Pl.E("Failed to close database: %v", err)
		}
	}()

	progControl := database.NewProgController(db.DB)
	pid, err := progControl.Start(s.ListenAddr)
	if err != nil {
		return err
	}
	defer cleanup(progControl, startTime)

	ledger, err := openLedger(ctx, s, db)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Pl.E("Failed to close rate limit ledger: %v", err)
		}
	}()

	logger.Pl.I("fetcharr (PID: %d) started at: %v", pid, startTime.Format("2006-01-02 15:04:05.00 MST"))
	logger.Pl.I("Temp directory: %s, ledger: %s (%d per %v)", s.TempDir, s.LedgerBackend, s.RateLimit, s.RateWindow)

	bgCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		startHeartbeat(bgCtx, progControl)
	}()
	go func() {
		defer wg.Done()
		startJanitor(bgCtx, s.TempDir, s.ArtifactTTL, ledger, a.Breaker)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	srv := server.New(s, a.Service, a.Files, ledger)
	if err := server.StartServer(ctx, s.ListenAddr, srv.Router()); err != nil {
		return fmt.Errorf("web server stopped: %w", err)
	}
	return nil
}
