//go:build !((linux && cgo) || windows)

package desktop

import (
	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/lifecycle"
)

// Without cgo there is no X11 grab, and macOS needs the main thread,
// which the launcher does not hand over. Only the signal path is left.
type nativeHotkey struct{}

func newNativeHotkey() lifecycle.HotkeyRegistrar { return nativeHotkey{} }

func (nativeHotkey) Register(config.Hotkey, func()) error { return lifecycle.ErrHotkeyUnsupported }

func (nativeHotkey) Unregister() error { return nil }
