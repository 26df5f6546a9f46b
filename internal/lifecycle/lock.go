package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/nexus/internal/daemon"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

// handoffRetry is the pause between show attempts while the running
// instance has the lock but is not listening yet.
const handoffRetry = 20 * time.Millisecond

// InstanceLock guarantees a single resident process per user. It is an
// advisory lock on a file in the data directory; the OS drops it when
// the holder dies, so a crashed instance never blocks the next start.
// The holder's PID is written inside the lock file.
type InstanceLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewInstanceLock creates a lock on path. Nothing is acquired yet.
func NewInstanceLock(path string) *InstanceLock {
	return &InstanceLock{
		path:  path,
		flock: flock.New(path, flock.SetFlag(os.O_CREATE|os.O_RDWR), flock.SetPermissions(0o644)),
	}
}

// TryAcquire takes the lock without blocking. It returns false when
// another process holds it.
func (l *InstanceLock) TryAcquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	if !acquired {
		return false, nil
	}
	l.locked = true
	if err := l.writePID(); err != nil {
		_ = l.Release()
		return false, err
	}
	return true, nil
}

func (l *InstanceLock) writePID() error {
	fh := l.flock.Fh()
	if fh == nil {
		return errors.New("instance lock has no open file")
	}
	if err := fh.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := fh.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}
	return nil
}

// HolderPID returns the PID recorded in the lock file at path. The value
// is only meaningful while someone holds the lock.
func HolderPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in lock file: %w", err)
	}
	return pid, nil
}

// Acquire takes the instance lock for ipc. It runs before any other
// subsystem opens files or starts goroutines. When another instance holds
// the lock, Acquire asks it to show itself and returns an
// InstanceAlreadyRunning error.
func Acquire(ctx context.Context, ipc daemon.Config, logger *slog.Logger) (*InstanceLock, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ipc.EnsureDir(); err != nil {
		return nil, nxerrors.InternalError("failed to create data directory", err)
	}
	lock := NewInstanceLock(ipc.LockPath)
	acquired, err := lock.TryAcquire()
	if err != nil {
		return nil, nxerrors.InternalError("instance lock", err)
	}
	if !acquired {
		_ = lock.flock.Close()
		return nil, handOff(ctx, ipc, logger)
	}
	return lock, nil
}

// handOff asks the running instance to show itself within the hand-off
// budget. The holder may have taken the lock without listening yet, so
// the connection is retried until the budget runs out.
func handOff(ctx context.Context, ipc daemon.Config, logger *slog.Logger) error {
	start := time.Now()
	ipc.Timeout = daemon.HandoffTimeout
	hctx, cancel := context.WithTimeout(ctx, daemon.HandoffTimeout)
	defer cancel()

	client := daemon.NewClient(ipc)
	var err error
	for {
		_, err = client.Show(hctx)
		if err == nil || !nxerrors.HasCode(err, nxerrors.ErrCodeIPCUnavailable) || !pause(hctx, handoffRetry) {
			break
		}
	}

	if err != nil {
		logger.Warn("hand-off to running instance failed", nxerrors.FormatForLog(err)...)
	} else {
		logger.Debug("handed off to running instance",
			"duration_ms", time.Since(start).Milliseconds())
	}
	nerr := nxerrors.New(nxerrors.ErrCodeInstanceAlreadyRunning, "nexus is already running", err).
		WithDetail("lock", ipc.LockPath)
	if pid, perr := HolderPID(ipc.LockPath); perr == nil {
		nerr = nerr.WithDetail("pid", strconv.Itoa(pid))
	}
	return nerr
}

// Release gives the lock up. Safe to call when not held.
func (l *InstanceLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release instance lock: %w", err)
	}
	return nil
}

// Held reports whether this process holds the lock.
func (l *InstanceLock) Held() bool {
	return l.locked
}

// Path returns the lock file path.
func (l *InstanceLock) Path() string {
	return l.path
}

// pause waits d and reports false if ctx ends first.
func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
