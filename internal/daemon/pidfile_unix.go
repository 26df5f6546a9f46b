//go:build !windows

package daemon

import (
	"errors"

	"github.com/google/renameio"
	"golang.org/x/sys/unix"
)

// processExists sends signal 0. EPERM means the process exists but
// belongs to another user.
func processExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// writeFileAtomic replaces path in one rename so readers never see a
// truncated PID.
func writeFileAtomic(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0o644)
}
