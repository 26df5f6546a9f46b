//go:build !windows

package cmd

import (
	"golang.org/x/sys/unix"

	"github.com/Aman-CERP/nexus/internal/daemon"
)

// signalToggle sends the hotkey signal to the recorded resident process.
func signalToggle(pf *daemon.PIDFile) (int, error) {
	return pf.Signal(unix.SIGUSR1)
}
