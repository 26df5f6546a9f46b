//go:build windows

package desktop

import (
	"golang.design/x/hotkey"

	"github.com/Aman-CERP/nexus/internal/config"
)

var nativeModifiers = map[config.Modifier]hotkey.Modifier{
	config.ModCtrl:  hotkey.ModCtrl,
	config.ModAlt:   hotkey.ModAlt,
	config.ModShift: hotkey.ModShift,
	config.ModSuper: hotkey.ModWin,
}

func displayAvailable() error { return nil }
