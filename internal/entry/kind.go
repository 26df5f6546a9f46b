package entry

import (
	"fmt"
	"strings"
)

// Kind is the closed set of launchable entry kinds.
type Kind uint8

const (
	KindApplication Kind = iota + 1
	KindFile
	KindSystemAction
	KindCalculation
	KindWebSearch
)

var kindNames = map[Kind]string{
	KindApplication:  "application",
	KindFile:         "file",
	KindSystemAction: "system_action",
	KindCalculation:  "calculation",
	KindWebSearch:    "web_search",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown entry kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid entry kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Payload carries kind-specific launch data. The set of implementations is
// closed: only the types in this package satisfy it.
type Payload interface {
	kind() Kind
}

// Application launches a command line.
type Application struct {
	Command     string
	Description string
}

// File opens a path with the desktop's default handler.
type File struct {
	Path string
}

// SystemAction performs a session or power action.
type SystemAction struct {
	Action Action
}

// Calculation is an evaluated arithmetic expression.
type Calculation struct {
	Expression string
	Value      string
}

// WebSearch opens a search URL in the browser.
type WebSearch struct {
	Engine string
	Terms  string
	URL    string
}

func (Application) kind() Kind  { return KindApplication }
func (File) kind() Kind         { return KindFile }
func (SystemAction) kind() Kind { return KindSystemAction }
func (Calculation) kind() Kind  { return KindCalculation }
func (WebSearch) kind() Kind    { return KindWebSearch }

// Action names a built-in system action.
type Action string

const (
	ActionLock       Action = "lock"
	ActionSleep      Action = "sleep"
	ActionRestart    Action = "restart"
	ActionShutdown   Action = "shutdown"
	ActionLogout     Action = "logout"
	ActionEmptyTrash Action = "empty_trash"
)

// defaultPayload derives a payload from the raw target when a source
// did not supply one.
func defaultPayload(kind Kind, name, target string) (Payload, error) {
	switch kind {
	case KindApplication:
		return Application{Command: target}, nil
	case KindFile:
		return File{Path: target}, nil
	case KindSystemAction:
		return SystemAction{Action: Action(target)}, nil
	case KindCalculation:
		return Calculation{Expression: name, Value: target}, nil
	case KindWebSearch:
		return WebSearch{URL: target}, nil
	}
	return nil, fmt.Errorf("invalid entry kind %d", uint8(kind))
}
