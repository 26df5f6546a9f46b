// Package desktop binds the launcher to the desktop session: a global
// hotkey through the windowing system and a status notifier tray icon.
// Both fall back to the signal and log paths in lifecycle when the
// session cannot provide them.
package desktop

import (
	"errors"
	"log/slog"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/lifecycle"
)

// Hotkey registers the binding with the windowing system and keeps the
// SIGUSR1 path live underneath it, so window-manager bindings that run
// 'nexus toggle' keep working whatever happens to the native grab.
type Hotkey struct {
	native lifecycle.HotkeyRegistrar
	signal lifecycle.HotkeyRegistrar
	logger *slog.Logger
}

// NewHotkey returns a Hotkey using the platform's native grab.
func NewHotkey(logger *slog.Logger) *Hotkey {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hotkey{
		native: newNativeHotkey(),
		signal: lifecycle.NewSignalHotkey(),
		logger: logger,
	}
}

// Register implements lifecycle.HotkeyRegistrar. The error is the native
// grab's; when this build has no native grab it is the signal path's.
func (h *Hotkey) Register(hk config.Hotkey, fire func()) error {
	sigErr := h.signal.Register(hk, fire)
	if sigErr != nil {
		h.logger.Debug("signal hotkey unavailable", "error", sigErr)
	}
	err := h.native.Register(hk, fire)
	if errors.Is(err, lifecycle.ErrHotkeyUnsupported) {
		return sigErr
	}
	return err
}

// Unregister implements lifecycle.HotkeyRegistrar.
func (h *Hotkey) Unregister() error {
	return errors.Join(h.native.Unregister(), h.signal.Unregister())
}
