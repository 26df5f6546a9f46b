// Package entry defines the launchable entry model shared by the index,
// search and launch packages.
package entry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// namespace seeds name-based entry ids.
var namespace = uuid.MustParse("5d1c3f9e-8a4b-5e27-9c1d-6f0a2b7e4c83")

// ErrEmptyName is returned for raw entries without a display name.
var ErrEmptyName = errors.New("entry has no name")

// ID identifies an entry. It is derived from kind and target, so the same
// application gets the same id across index refreshes and restarts.
type ID uuid.UUID

// NewID computes the id for a kind/target pair.
func NewID(kind Kind, target string) ID {
	return ID(uuid.NewSHA1(namespace, []byte(kind.String()+"\x00"+target)))
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("parse entry id: %w", err)
	}
	return ID(u), nil
}

func (id ID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether id is unset.
func (id ID) IsZero() bool { return id == ID{} }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// Raw is what an index source yields.
type Raw struct {
	Name    string
	Target  string
	Kind    Kind
	Payload Payload // optional; derived from Target when nil
	// Keywords are extra searchable words that are not shown ("reboot" for Restart).
	Keywords []string
}

// Entry is one launchable item. Everything except LastUsed and UseCount
// is fixed at construction.
type Entry struct {
	ID      ID
	Name    string
	Target  string
	Kind    Kind
	Payload Payload

	// Words are the lowercase prefix-indexable tokens of Name.
	Words []string
	// Initials is the first-letter abbreviation of Name, "" for one-word names.
	Initials string
	// Folded is the lowercase, mark-stripped Name used for fuzzy matching.
	Folded string
	// Detail is the folded application description, matched at reduced
	// weight. Empty for other kinds.
	Detail string

	LastUsed time.Time
	UseCount int
}

// New builds an Entry from a raw source record.
func New(raw Raw) (Entry, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}
	if !raw.Kind.Valid() {
		return Entry{}, fmt.Errorf("entry %q: invalid kind %d", name, uint8(raw.Kind))
	}

	payload := raw.Payload
	if payload == nil {
		p, err := defaultPayload(raw.Kind, name, raw.Target)
		if err != nil {
			return Entry{}, err
		}
		payload = p
	} else if payload.kind() != raw.Kind {
		return Entry{}, fmt.Errorf("entry %q: %T payload for kind %s", name, payload, raw.Kind)
	}

	return Entry{
		ID:       NewID(raw.Kind, raw.Target),
		Name:     name,
		Target:   raw.Target,
		Kind:     raw.Kind,
		Payload:  payload,
		Words:    words(name, raw.Keywords),
		Initials: Initials(Segments(name)),
		Folded:   Normalize(name),
		Detail:   detail(payload),
	}, nil
}

func detail(p Payload) string {
	if app, ok := p.(Application); ok {
		return Normalize(app.Description)
	}
	return ""
}

// MustNew is New for static tables; it panics on error.
func MustNew(raw Raw) Entry {
	e, err := New(raw)
	if err != nil {
		panic(err)
	}
	return e
}

// DedupKey groups entries that should appear only once in an index.
func (e Entry) DedupKey() string {
	return e.Kind.String() + "\x00" + e.Folded
}

func words(name string, keywords []string) []string {
	w := Tokenize(name)
	if len(keywords) == 0 {
		return w
	}
	seen := make(map[string]struct{}, len(w))
	for _, x := range w {
		seen[x] = struct{}{}
	}
	for _, k := range keywords {
		for _, x := range Tokenize(k) {
			if _, ok := seen[x]; !ok {
				seen[x] = struct{}{}
				w = append(w, x)
			}
		}
	}
	return w
}
