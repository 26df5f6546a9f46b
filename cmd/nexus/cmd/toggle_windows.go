//go:build windows

package cmd

import (
	"errors"

	"github.com/Aman-CERP/nexus/internal/daemon"
)

func signalToggle(*daemon.PIDFile) (int, error) {
	return 0, errors.New("no toggle signal on windows")
}
