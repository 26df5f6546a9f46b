//go:build (linux && cgo) || windows

package desktop

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/lifecycle"
)

// nativeHotkey grabs one key combination from the windowing system.
type nativeHotkey struct {
	mu   sync.Mutex
	hk   *hotkey.Hotkey
	done chan struct{}
}

func newNativeHotkey() lifecycle.HotkeyRegistrar {
	return &nativeHotkey{}
}

func (n *nativeHotkey) Register(b config.Hotkey, fire func()) error {
	if err := displayAvailable(); err != nil {
		return err
	}
	mods, key, err := nativeBinding(b)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.releaseLocked()

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("grab %s: %w", b, err)
	}
	n.hk, n.done = hk, make(chan struct{})

	keydown, done := hk.Keydown(), n.done
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				fire()
			}
		}
	}()
	return nil
}

func (n *nativeHotkey) Unregister() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.releaseLocked()
}

func (n *nativeHotkey) releaseLocked() error {
	if n.hk == nil {
		return nil
	}
	close(n.done)
	err := n.hk.Unregister()
	n.hk, n.done = nil, nil
	return err
}

var nativeKeys = map[string]hotkey.Key{
	"Space": hotkey.KeySpace, "Enter": hotkey.KeyReturn, "Esc": hotkey.KeyEscape, "Tab": hotkey.KeyTab,
	"Up": hotkey.KeyUp, "Down": hotkey.KeyDown, "Left": hotkey.KeyLeft, "Right": hotkey.KeyRight,
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD, "E": hotkey.KeyE,
	"F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH, "I": hotkey.KeyI, "J": hotkey.KeyJ,
	"K": hotkey.KeyK, "L": hotkey.KeyL, "M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO,
	"P": hotkey.KeyP, "Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX, "Y": hotkey.KeyY,
	"Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}

// nativeBinding translates a parsed binding into the windowing system's
// modifier and key codes.
func nativeBinding(b config.Hotkey) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := nativeKeys[b.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key %s cannot be grabbed globally", b.Key)
	}
	var mods []hotkey.Modifier
	for _, m := range []config.Modifier{config.ModCtrl, config.ModAlt, config.ModShift, config.ModSuper} {
		if b.Has(m) {
			mods = append(mods, nativeModifiers[m])
		}
	}
	return mods, key, nil
}
