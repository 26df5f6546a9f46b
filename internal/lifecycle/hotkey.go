package lifecycle

import (
	"context"
	"errors"

	"github.com/Aman-CERP/nexus/internal/config"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

// HotkeyRegistrar binds a global activation key. fire is called from an
// arbitrary goroutine each time the key is pressed.
type HotkeyRegistrar interface {
	Register(hk config.Hotkey, fire func()) error
	Unregister() error
}

// ErrHotkeyUnsupported is returned by registrars with no way to deliver
// key presses on this platform.
var ErrHotkeyUnsupported = errors.New("global hotkeys are not supported on this platform")

// Hotkey registration outcomes reported in status.
const (
	HotkeyRegistered = "registered"
	HotkeyFallback   = "fallback"
	HotkeyDegraded   = "degraded"
)

// hotkeyResult records which binding ended up active.
type hotkeyResult struct {
	Binding string
	Status  string
}

// registerHotkey tries the primary binding, retrying once, then the
// fallback, retrying once. When neither can be registered it returns a
// HotkeyRegistrationFailed error and a degraded result.
func registerHotkey(ctx context.Context, reg HotkeyRegistrar, cfg config.HotkeyConfig, fire func()) (hotkeyResult, error) {
	attempt := func(binding string) error {
		hk, err := config.ParseHotkey(binding)
		if err != nil {
			return err
		}
		return nxerrors.Retry(ctx, nxerrors.RetryOnce(), func() error {
			return reg.Register(hk, fire)
		})
	}

	primaryErr := attempt(cfg.Binding)
	if primaryErr == nil {
		return hotkeyResult{Binding: cfg.Binding, Status: HotkeyRegistered}, nil
	}
	if cfg.Fallback != "" {
		if err := attempt(cfg.Fallback); err == nil {
			return hotkeyResult{Binding: cfg.Fallback, Status: HotkeyFallback}, nil
		}
	}

	return hotkeyResult{Status: HotkeyDegraded}, nxerrors.New(nxerrors.ErrCodeHotkeyRegistrationFailed,
		"could not register hotkey "+cfg.Binding, primaryErr).
		WithDetail("fallback", cfg.Fallback).
		WithSuggestion("Bind a key in your window manager to run 'nexus toggle'")
}
