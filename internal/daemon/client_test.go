package daemon

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

func TestClient_NotRunning(t *testing.T) {
	client := NewClient(Config{SocketPath: filepath.Join(t.TempDir(), "missing.sock"), Timeout: time.Second})

	assert.False(t, client.IsRunning())

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeIPCUnavailable))
}

func TestClient_IsRunning_WithListener(t *testing.T) {
	socketPath := testSocketPath(t)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()

	assert.True(t, NewClient(Config{SocketPath: socketPath, Timeout: time.Second}).IsRunning())
}

func TestClient_HonoursContextDeadline(t *testing.T) {
	// Given: a listener that accepts but never answers
	socketPath := testSocketPath(t)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	client := NewClient(Config{SocketPath: socketPath, Timeout: 5 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), HandoffTimeout)
	defer cancel()

	// When: sending show with the hand-off budget
	start := time.Now()
	_, err = client.Show(ctx)

	// Then: the call fails within the budget, not the client timeout
	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeIPCTimeout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_SearchValidatesLocally(t *testing.T) {
	client := NewClient(Config{SocketPath: filepath.Join(t.TempDir(), "missing.sock"), Timeout: time.Second})

	_, err := client.Search(context.Background(), SearchParams{})

	require.Error(t, err)
	assert.False(t, nxerrors.HasCode(err, nxerrors.ErrCodeIPCUnavailable))
}
