package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"

	"github.com/Masterminds/squirrel"
)

// ErrAlreadyRunning is returned when another live server holds the database.
var ErrAlreadyRunning = errors.New("another fetcharr server is already running")

// ProgControl marks the server as running so two servers never share one ledger.
type ProgControl struct {
	DB        *sql.DB
	ProcessID int
	now       func() time.Time
}

// NewProgController returns a program controller for the given database.
func NewProgController(database *sql.DB) *ProgControl {
	return &ProgControl{
		DB:  database,
		now: time.Now,
	}
}

// Start claims the program row for this process.
//
// A row left marked running by a process whose heartbeat went stale (power cut, SIGKILL)
// is reclaimed.
func (pc *ProgControl) Start(listenAddr string) (pid int, err error) {
	if id, running := pc.checkProgRunning(); running {
		reset, err := pc.resetStaleProcess()
		if err != nil {
			return 0, fmt.Errorf("could not correct stale process: %w", err)
		}
		if !reset {
			return 0, fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, id)
		}
	}

	pid = os.Getpid()
	host, _ := os.Hostname()
	now := pc.now()

	query := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgRunning, true).
		Set(consts.QProgPID, pid).
		Set(consts.QProgHost, host).
		Set(consts.QProgListen, listenAddr).
		Set(consts.QProgStartedAt, now).
		Set(consts.QProgHeartbeat, now).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB)

	if _, err := query.Exec(); err != nil {
		return pid, fmt.Errorf("failed to mark program running: %w", err)
	}
	pc.ProcessID = pid
	return pid, nil
}

// Quit releases the program row, ready for the next run.
func (pc *ProgControl) Quit() error {
	if id, running := pc.checkProgRunning(); !running {
		return fmt.Errorf("fetcharr is not marked as running. Process %d still active?", id)
	}

	query := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgRunning, false).
		Set(consts.QProgPID, 0).
		Set(consts.QProgHeartbeat, pc.now()).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB)

	if _, err := query.Exec(); err != nil {
		return err
	}
	logger.Pl.I("Quitting fetcharr...")
	return nil
}

// UpdateHeartbeat updates the program heartbeat.
//
// Keeps a crashed server from locking out the next one for longer than the stale window.
func (pc *ProgControl) UpdateHeartbeat() error {
	query := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgHeartbeat, pc.now()).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB)

	if _, err := query.Exec(); err != nil {
		return err
	}
	return nil
}

// ******************************** Private ********************************

// checkProgRunning reports the recorded PID and whether the row is marked running.
func (pc *ProgControl) checkProgRunning() (int, bool) {
	var (
		running bool
		pid     int
	)

	query := squirrel.
		Select(consts.QProgRunning, consts.QProgPID).
		From(consts.DBProgram).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB)

	if err := query.QueryRow().Scan(&running, &pid); err != nil {
		logger.Pl.E("Failed to query program running row: %v", err)
		return pid, false
	}
	return pid, running
}

// resetStaleProcess clears the running flag when the heartbeat is older than the stale window.
func (pc *ProgControl) resetStaleProcess() (reset bool, err error) {
	var lastHeartbeat sql.NullTime

	query := squirrel.
		Select(consts.QProgHeartbeat).
		From(consts.DBProgram).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB)

	if err := query.QueryRow().Scan(&lastHeartbeat); err != nil {
		return false, err
	}

	if lastHeartbeat.Valid && pc.now().Sub(lastHeartbeat.Time) <= consts.StaleHeartbeat {
		return false, nil
	}

	logger.Pl.I("Detected stale server process, resetting state...")

	resetQuery := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgRunning, false).
		Set(consts.QProgPID, 0).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB)

	if _, err := resetQuery.Exec(); err != nil {
		return false, err
	}
	return true, nil
}
