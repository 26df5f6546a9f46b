//go:build linux

package desktop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const statusNotifierWatcher = "org.kde.StatusNotifierWatcher"

// traySupported checks that a session bus is reachable and that some
// panel on it hosts status notifier items. Without a host the icon would
// be registered but never drawn.
func traySupported() error {
	if !sessionBusAdvertised() {
		return errors.New("no session bus in this environment")
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("no session bus: %w", err)
	}
	defer conn.Close()

	var hosted bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, statusNotifierWatcher).Store(&hosted); err != nil {
		return fmt.Errorf("query %s: %w", statusNotifierWatcher, err)
	}
	if !hosted {
		return errors.New("no status notifier host on the session bus")
	}
	return nil
}

// sessionBusAdvertised reports whether the environment names a session
// bus. Connecting without one makes the client try to autolaunch a bus.
func sessionBusAdvertised() bool {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return true
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, "bus"))
	return err == nil
}
