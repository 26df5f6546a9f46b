package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/daemon"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

func TestInstanceLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nexus.lock")
	lock := NewInstanceLock(path)

	acquired, err := lock.TryAcquire()
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, lock.Held())

	_, err = os.Stat(path)
	assert.NoError(t, err, "lock file should be created with its directory")

	require.NoError(t, lock.Release())
	assert.False(t, lock.Held())
}

func TestInstanceLock_SecondHolderRefused(t *testing.T) {
	// Given: one lock holder
	path := filepath.Join(t.TempDir(), "nexus.lock")
	first := NewInstanceLock(path)
	acquired, err := first.TryAcquire()
	require.NoError(t, err)
	require.True(t, acquired)

	// When: a second lock on the same file tries
	second := NewInstanceLock(path)
	acquired, err = second.TryAcquire()

	// Then: it is refused without error
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.False(t, second.Held())

	// And: after release it can be taken
	require.NoError(t, first.Release())
	acquired, err = second.TryAcquire()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.Release())
}

func TestInstanceLock_ReleaseWithoutAcquire(t *testing.T) {
	lock := NewInstanceLock(filepath.Join(t.TempDir(), "nexus.lock"))
	assert.NoError(t, lock.Release())
	assert.NoError(t, lock.Release())
}

func TestInstanceLock_RecordsHolderPID(t *testing.T) {
	// Given: a held lock
	path := filepath.Join(t.TempDir(), "nexus.lock")
	lock := NewInstanceLock(path)
	acquired, err := lock.TryAcquire()
	require.NoError(t, err)
	require.True(t, acquired)
	defer func() { _ = lock.Release() }()

	// When: another process reads the lock file
	pid, err := HolderPID(path)

	// Then: it names this process
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestInstanceLock_RewritesStalePID(t *testing.T) {
	// Given: a lock file left by a dead holder with a longer PID
	path := filepath.Join(t.TempDir(), "nexus.lock")
	require.NoError(t, os.WriteFile(path, []byte("9999999999\n"), 0o644))

	// When: the lock is taken
	lock := NewInstanceLock(path)
	acquired, err := lock.TryAcquire()
	require.NoError(t, err)
	require.True(t, acquired)
	defer func() { _ = lock.Release() }()

	// Then: only the new PID remains
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))
}

func TestHolderPID_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexus.lock")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := HolderPID(path)
	assert.Error(t, err)

	_, err = HolderPID(filepath.Join(t.TempDir(), "missing.lock"))
	assert.Error(t, err)
}

func TestAcquire_FirstInstanceWins(t *testing.T) {
	ipc := testIPC(t)

	lock, err := Acquire(context.Background(), ipc, nil)
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	assert.True(t, lock.Held())
	assert.Equal(t, ipc.LockPath, lock.Path())
}

func TestAcquire_SecondInstanceReportsHolder(t *testing.T) {
	// Given: a holder that never listens
	ipc := testIPC(t)
	first, err := Acquire(context.Background(), ipc, nil)
	require.NoError(t, err)
	defer func() { _ = first.Release() }()

	// When: a second instance starts
	start := time.Now()
	second, err := Acquire(context.Background(), ipc, nil)
	elapsed := time.Since(start)

	// Then: it gives up within the hand-off budget with the holder's PID
	assert.Nil(t, second)
	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeInstanceAlreadyRunning))
	var nerr *nxerrors.NexusError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, strconv.Itoa(os.Getpid()), nerr.Details["pid"])
	assert.Equal(t, ipc.LockPath, nerr.Details["lock"])
	assert.GreaterOrEqual(t, elapsed, daemon.HandoffTimeout-50*time.Millisecond,
		"the dial should be retried until the budget runs out")
	assert.Less(t, elapsed, daemon.HandoffTimeout+400*time.Millisecond)
}

func TestAcquire_HandOffWaitsForLateListener(t *testing.T) {
	// Given: a holder whose socket comes up 100ms after the second start
	ipc := testIPC(t)
	first, err := Acquire(context.Background(), ipc, nil)
	require.NoError(t, err)
	defer func() { _ = first.Release() }()

	handler := &showCounter{}
	srv, err := daemon.NewServer(ipc.SocketPath)
	require.NoError(t, err)
	srv.SetHandler(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(100 * time.Millisecond)
		_ = srv.ListenAndServe(ctx)
	}()

	// When: the second instance starts immediately
	start := time.Now()
	_, err = Acquire(context.Background(), ipc, nil)

	// Then: the show request still reaches the holder within the budget
	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeInstanceAlreadyRunning))
	assert.Equal(t, int32(1), handler.shows.Load())
	assert.Less(t, time.Since(start), daemon.HandoffTimeout+100*time.Millisecond)

	cancel()
	<-done
}

type showCounter struct {
	shows atomic.Int32
}

func (h *showCounter) HandleSearch(context.Context, daemon.SearchParams) ([]daemon.SearchResult, error) {
	return nil, nil
}

func (h *showCounter) HandleCommand(_ context.Context, method string) (daemon.CommandResult, error) {
	if method == daemon.MethodShow {
		h.shows.Add(1)
	}
	return daemon.CommandResult{State: "visible"}, nil
}

func (h *showCounter) GetStatus() daemon.StatusResult {
	return daemon.StatusResult{Running: true}
}
