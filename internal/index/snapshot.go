package index

import (
	"strings"
	"time"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// SourceStatus records how one source fared during a build.
type SourceStatus struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// Snapshot is an immutable view of the index. A refresh builds a new
// Snapshot and swaps it in; existing readers keep the old one.
type Snapshot struct {
	Generation uint64
	BuiltAt    time.Time
	Sources    []SourceStatus

	entries []entry.Entry
	byID    map[entry.ID]int
	prefix  *PrefixIndex
}

// NewSnapshot indexes entries. Later duplicates of an id or of a
// (kind, name) pair are dropped.
func NewSnapshot(generation uint64, entries []entry.Entry) *Snapshot {
	s := &Snapshot{
		Generation: generation,
		BuiltAt:    time.Now(),
		entries:    make([]entry.Entry, 0, len(entries)),
		byID:       make(map[entry.ID]int, len(entries)),
		prefix:     NewPrefixIndex(),
	}

	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := s.byID[e.ID]; dup {
			continue
		}
		key := e.DedupKey()
		if _, dup := names[key]; dup {
			continue
		}
		names[key] = struct{}{}
		s.byID[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
		s.prefix.Insert(e)
	}
	return s
}

// Empty returns a snapshot with no entries.
func Empty() *Snapshot {
	return NewSnapshot(0, nil)
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Entries returns all entries. Callers must not modify the slice.
func (s *Snapshot) Entries() []entry.Entry { return s.entries }

// Get returns the entry with the given id.
func (s *Snapshot) Get(id entry.ID) (entry.Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entry.Entry{}, false
	}
	return s.entries[i], true
}

// Lookup returns ids of entries with a word starting with prefix.
// Multi-word prefixes must all match. A prefix with no letters or digits
// ("++") matches entries whose folded name starts with it.
func (s *Snapshot) Lookup(prefix string) []entry.ID {
	words := entry.QueryWords(prefix)
	switch len(words) {
	case 0:
		return s.lookupFolded(prefix)
	case 1:
		return s.prefix.Lookup(words[0])
	}
	return s.prefix.LookupAll(words)
}

func (s *Snapshot) lookupFolded(prefix string) []entry.ID {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	var ids []entry.ID
	for _, e := range s.entries {
		if strings.HasPrefix(e.Folded, prefix) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
