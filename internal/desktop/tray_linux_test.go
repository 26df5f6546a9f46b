//go:build linux

package desktop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionBusAdvertised(t *testing.T) {
	runtime := t.TempDir()

	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.False(t, sessionBusAdvertised())

	t.Setenv("XDG_RUNTIME_DIR", runtime)
	assert.False(t, sessionBusAdvertised(), "runtime dir without a bus socket")

	require.NoError(t, os.WriteFile(filepath.Join(runtime, "bus"), nil, 0o600))
	assert.True(t, sessionBusAdvertised())

	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/run/user/1000/bus")
	assert.True(t, sessionBusAdvertised())
}

func TestTraySupported_NoSessionBus(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	t.Setenv("XDG_RUNTIME_DIR", "")

	assert.Error(t, traySupported())
}
