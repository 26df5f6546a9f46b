//go:build !linux && !windows

package desktop

// The macOS menu bar must run on the main thread, which the launcher does
// not give up.
func traySupported() error { return errTrayUnsupported }

func startTray([]menuEntry, func(string)) (func(), error) { return nil, errTrayUnsupported }
