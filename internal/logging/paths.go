package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.nexus/logs/).
// Falls back to the temp directory if home is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".nexus", "logs")
	}
	return filepath.Join(home, ".nexus", "logs")
}

// DefaultLogPath returns the resident process log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "nexus.log")
}

// FindLogFile returns explicit if it exists, otherwise the default log path.
func FindLogFile(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = DefaultLogPath()
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no log file at %s: %w", path, err)
	}
	return path, nil
}
