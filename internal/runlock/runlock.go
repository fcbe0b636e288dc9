package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	lockName   = "ytpresence.lock"
	markerName = "debug-endpoint"
)

// ErrAlreadyRunning means another daemon holds the lock for this state directory
var ErrAlreadyRunning = errors.New("another instance is running")

// Lock keeps one daemon per state directory and records which browser endpoint it attached to.
// Both files are removed on Release.
type Lock struct {
	logger   *zap.Logger
	dir      string
	debugURL string
	fl       *flock.Flock
}

func New(logger *zap.Logger, cfg domain.Config) *Lock {
	return &Lock{
		logger:   logger,
		dir:      cfg.StateDir(),
		debugURL: cfg.DebugURL(),
	}
}

// Acquire takes the lock without blocking and writes the endpoint marker
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return domain.Wrap(domain.ErrConfiguration, "runlock", "create state dir", err)
	}

	fl := flock.New(filepath.Join(l.dir, lockName))
	locked, err := fl.TryLock()
	if err != nil {
		return domain.Wrap(domain.ErrConfiguration, "runlock", "lock", err)
	}
	if !locked {
		return domain.Wrap(domain.ErrConfiguration, "runlock", "lock", fmt.Errorf("%w (%s)", ErrAlreadyRunning, fl.Path()))
	}
	l.fl = fl

	if err := os.WriteFile(l.markerPath(), []byte(l.debugURL+"\n"), 0o600); err != nil {
		_ = l.Release()
		return domain.Wrap(domain.ErrConfiguration, "runlock", "write marker", err)
	}

	l.logger.Debug("Run lock acquired", zap.String("path", fl.Path()))
	return nil
}

// Release removes the marker and drops the lock. Safe to call more than once
func (l *Lock) Release() error {
	if l.fl == nil {
		return nil
	}

	var errs []error
	if err := os.Remove(l.markerPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	if err := l.fl.Unlock(); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(l.fl.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	l.fl = nil

	l.logger.Debug("Run lock released")
	return errors.Join(errs...)
}

func (l *Lock) markerPath() string {
	return filepath.Join(l.dir, markerName)
}
