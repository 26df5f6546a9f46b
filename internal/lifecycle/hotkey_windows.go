//go:build windows

package lifecycle

import "github.com/Aman-CERP/nexus/internal/config"

// SignalHotkey has no delivery path on Windows; registration always fails
// and the process runs degraded, reachable through 'nexus show'.
type SignalHotkey struct{}

// NewSignalHotkey returns a SignalHotkey.
func NewSignalHotkey() *SignalHotkey { return &SignalHotkey{} }

// Register implements HotkeyRegistrar.
func (*SignalHotkey) Register(config.Hotkey, func()) error { return ErrHotkeyUnsupported }

// Unregister implements HotkeyRegistrar.
func (*SignalHotkey) Unregister() error { return nil }
