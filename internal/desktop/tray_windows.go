//go:build windows

package desktop

// The notification area is always present on Windows.
func traySupported() error { return nil }
