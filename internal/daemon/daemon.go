package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"quadvoice/internal/api"
	"quadvoice/internal/config"
	"quadvoice/internal/logging"
)

// Daemon owns the HTTP server lifecycle and enforces single-instance
// execution via a file lock under the data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	server *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon around an already-wired api service.
func New(cfg *config.Config, svc *api.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("daemon requires config and service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg, svc, logger)
	return d, nil
}

// Start acquires the instance lock and brings the HTTP listener up. It
// returns once the listener is accepting; the server shuts down when ctx is
// cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another quadvoice instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.start(runCtx); err != nil {
		cancel()
		d.releaseLock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	return nil
}

// Stop shuts the server down and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Swap(false) {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	d.releaseLock()
	d.logger.Info("daemon stopped")
}

// Addr reports the bound listener address, empty before Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

func (d *Daemon) releaseLock() {
	_ = d.lock.Unlock()
}
