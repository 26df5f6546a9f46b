//go:build linux && cgo

package desktop

import (
	"errors"
	"os"

	"golang.design/x/hotkey"

	"github.com/Aman-CERP/nexus/internal/config"
)

// X11 maps Alt to Mod1 and Super to Mod4 on every common keymap.
var nativeModifiers = map[config.Modifier]hotkey.Modifier{
	config.ModCtrl:  hotkey.ModCtrl,
	config.ModAlt:   hotkey.Mod1,
	config.ModShift: hotkey.ModShift,
	config.ModSuper: hotkey.Mod4,
}

// displayAvailable refuses the grab outside an X session. Wayland
// compositors do not allow global grabs through X.
func displayAvailable() error {
	if os.Getenv("DISPLAY") == "" {
		return errors.New("no X display for a global grab")
	}
	return nil
}
