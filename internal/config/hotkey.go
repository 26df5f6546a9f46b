package config

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a bit set of hotkey modifiers.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"win":     ModSuper,
	"super":   ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
}

// canonical display order
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModSuper, "Super"},
}

var namedKeys = map[string]string{
	"space":     "Space",
	"enter":     "Enter",
	"return":    "Enter",
	"esc":       "Esc",
	"escape":    "Esc",
	"tab":       "Tab",
	"backspace": "Backspace",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
}

// ErrEmptyHotkey is returned for an empty binding.
var ErrEmptyHotkey = errors.New("empty hotkey")

// Hotkey is a parsed key binding such as Alt+Space.
type Hotkey struct {
	Modifiers Modifier
	Key       string
}

// ParseHotkey parses bindings like "Alt+Space", "ctrl+shift+k" or "F12".
// Modifiers and key names are case-insensitive; exactly one key is required.
func ParseHotkey(s string) (Hotkey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Hotkey{}, ErrEmptyHotkey
	}

	var h Hotkey
	for part := range strings.SplitSeq(s, "+") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			return Hotkey{}, fmt.Errorf("hotkey %q: empty component", s)
		}
		if mod, ok := modifierNames[token]; ok {
			if h.Modifiers&mod != 0 {
				return Hotkey{}, fmt.Errorf("hotkey %q: duplicate modifier %s", s, part)
			}
			h.Modifiers |= mod
			continue
		}
		key, ok := parseKey(token)
		if !ok {
			return Hotkey{}, fmt.Errorf("hotkey %q: unknown key %q", s, part)
		}
		if h.Key != "" {
			return Hotkey{}, fmt.Errorf("hotkey %q: more than one key", s)
		}
		h.Key = key
	}
	if h.Key == "" {
		return Hotkey{}, fmt.Errorf("hotkey %q: missing key", s)
	}
	return h, nil
}

func parseKey(token string) (string, bool) {
	if name, ok := namedKeys[token]; ok {
		return name, true
	}
	if len(token) == 1 && (token[0] >= 'a' && token[0] <= 'z' || token[0] >= '0' && token[0] <= '9') {
		return strings.ToUpper(token), true
	}
	if len(token) >= 2 && token[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(token[1:], "%d", &n); err == nil && n >= 1 && n <= 12 && fmt.Sprint(n) == token[1:] {
			return "F" + token[1:], true
		}
	}
	return "", false
}

// String returns the canonical form, e.g. "Ctrl+Alt+Space".
func (h Hotkey) String() string {
	var parts []string
	for _, m := range modifierOrder {
		if h.Modifiers&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, h.Key), "+")
}

// Has reports whether all of mods are set.
func (h Hotkey) Has(mods Modifier) bool {
	return h.Modifiers&mods == mods
}
