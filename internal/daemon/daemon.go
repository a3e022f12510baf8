// Package daemon coordinates the long-running service: the HTTP server,
// the session sweeper, and single-instance enforcement.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tubio/internal/config"
	"tubio/internal/logging"
	"tubio/internal/server"
	"tubio/internal/session"
)

// Daemon owns the background services and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.Store
	server *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	sweeper sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *session.Store, logger *slog.Logger, srv *server.Server) (*Daemon, error) {
	if cfg == nil || store == nil || srv == nil {
		return nil, errors.New("daemon requires config, store, and server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "tubiod.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		server:   srv,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, begins serving, and launches the
// session sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tubio daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.server.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start server: %w", err)
	}

	interval := time.Duration(d.cfg.Sessions.SweepIntervalSeconds) * time.Second
	d.sweeper.Add(1)
	go func() {
		defer d.sweeper.Done()
		d.store.RunSweeper(d.ctx, interval)
	}()

	d.running.Store(true)
	d.logger.Info("tubio daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()))
	return nil
}

// Stop shuts down the server and sweeper and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.sweeper.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("tubio daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start has succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr reports the bound listen address while running.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
