// Package daemon is the IPC surface of the resident launcher process.
// Short-lived CLI invocations (and a second launcher instance handing off)
// talk to it over a Unix socket with line-delimited JSON-RPC 2.0.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HandoffTimeout bounds the show request a second instance sends before
// exiting.
const HandoffTimeout = 400 * time.Millisecond

// Config holds the paths and timeouts shared by server and client.
type Config struct {
	// SocketPath is the Unix domain socket path for IPC.
	// Default: ~/.nexus/nexus.sock
	SocketPath string

	// PIDPath is the file path for storing the resident process ID.
	// Default: ~/.nexus/nexus.pid
	PIDPath string

	// LockPath is the single-instance lock file.
	// Default: ~/.nexus/nexus.lock
	LockPath string

	// Timeout is the maximum duration for client-server communication.
	// Default: 5s
	Timeout time.Duration
}

// DataDir returns ~/.nexus, or /tmp/.nexus when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".nexus")
}

// DefaultConfig returns a Config rooted at DataDir.
func DefaultConfig() Config {
	dir := DataDir()
	return Config{
		SocketPath: filepath.Join(dir, "nexus.sock"),
		PIDPath:    filepath.Join(dir, "nexus.pid"),
		LockPath:   filepath.Join(dir, "nexus.lock"),
		Timeout:    5 * time.Second,
	}
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket path cannot be empty")
	}
	if c.PIDPath == "" {
		return fmt.Errorf("PID path cannot be empty")
	}
	if c.LockPath == "" {
		return fmt.Errorf("lock path cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// EnsureDir creates the directories for the socket, PID and lock files.
func (c Config) EnsureDir() error {
	seen := make(map[string]bool, 3)
	for _, p := range []string{c.SocketPath, c.PIDPath, c.LockPath} {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
