package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	for _, p := range []string{cfg.SocketPath, cfg.PIDPath, cfg.LockPath} {
		assert.Equal(t, DataDir(), filepath.Dir(p))
	}
	assert.Equal(t, "nexus.sock", filepath.Base(cfg.SocketPath))
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Less(t, HandoffTimeout, 500*time.Millisecond)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"empty socket", func(c *Config) { c.SocketPath = "" }, "socket path"},
		{"empty pid", func(c *Config) { c.PIDPath = "" }, "PID path"},
		{"empty lock", func(c *Config) { c.LockPath = "" }, "lock path"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_EnsureDir(t *testing.T) {
	root := t.TempDir()
	cfg := Config{
		SocketPath: filepath.Join(root, "run", "nexus.sock"),
		PIDPath:    filepath.Join(root, "run", "nexus.pid"),
		LockPath:   filepath.Join(root, "state", "nexus.lock"),
		Timeout:    time.Second,
	}

	require.NoError(t, cfg.EnsureDir())

	for _, dir := range []string{"run", "state"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
