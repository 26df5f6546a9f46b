// Package mru tracks how recently and how often entries were launched.
//
// The Store has a single writer, the launch-confirmation path, and any
// number of readers. Readers work on immutable snapshots; every RecordUse
// publishes a new one.
package mru

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// DefaultLoadLimit is how many records are loaded from persistence at startup.
const DefaultLoadLimit = 1000

// Usage is the launch history of one entry.
type Usage struct {
	LastUsed time.Time
	UseCount int
}

// Record is a Usage tagged with its entry id.
type Record struct {
	ID entry.ID
	Usage
}

// Persistence stores launch history. The format is the implementation's concern.
type Persistence interface {
	// GetRecent returns up to n records, most recently used first.
	GetRecent(ctx context.Context, n int) ([]Record, error)
	// RecordUse bumps the use count of id and sets its last-used time.
	RecordUse(ctx context.Context, id entry.ID, at time.Time) error
	Close() error
}

// Snapshot is an immutable view of usage history.
type Snapshot struct {
	usage map[entry.ID]Usage

	rankOnce sync.Once
	ranks    map[entry.ID]int
}

// Get returns the usage of id; the zero Usage if never launched.
func (s *Snapshot) Get(id entry.ID) Usage {
	return s.usage[id]
}

// Rank returns the position of id in recency order (0 is the most
// recently used) and whether id has any history.
func (s *Snapshot) Rank(id entry.ID) (int, bool) {
	s.rankOnce.Do(func() {
		recent := s.Recent(-1)
		s.ranks = make(map[entry.ID]int, len(recent))
		for i, r := range recent {
			s.ranks[r.ID] = i
		}
	})
	r, ok := s.ranks[id]
	return r, ok
}

// Len returns the number of entries with history.
func (s *Snapshot) Len() int { return len(s.usage) }

// Recent returns up to n records ordered by last use, then use count,
// then id so the order is total.
func (s *Snapshot) Recent(n int) []Record {
	out := make([]Record, 0, len(s.usage))
	for id, u := range s.usage {
		out = append(out, Record{ID: id, Usage: u})
	}
	slices.SortFunc(out, compareRecords)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func compareRecords(a, b Record) int {
	if c := b.LastUsed.Compare(a.LastUsed); c != 0 {
		return c
	}
	if c := cmp.Compare(b.UseCount, a.UseCount); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

// Store is the in-memory MRU state backed by a Persistence.
type Store struct {
	persist Persistence
	now     func() time.Time

	writeMu  sync.Mutex
	current  atomic.Pointer[Snapshot]
	changeMu sync.Mutex
	onChange []func(entry.ID)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty Store. Call Load to read persisted history.
func NewStore(p Persistence, opts ...Option) *Store {
	if p == nil {
		p = NewMemory()
	}
	s := &Store{persist: p, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&Snapshot{usage: map[entry.ID]Usage{}})
	return s
}

// Load replaces the in-memory history with up to limit persisted records.
func (s *Store) Load(ctx context.Context, limit int) error {
	records, err := s.persist.GetRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("load mru history: %w", err)
	}
	usage := make(map[entry.ID]Usage, len(records))
	for _, r := range records {
		usage[r.ID] = r.Usage
	}

	s.writeMu.Lock()
	s.current.Store(&Snapshot{usage: usage})
	s.writeMu.Unlock()
	return nil
}

// Snapshot returns the current read-only view.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// OnChange registers fn to run after each RecordUse.
func (s *Store) OnChange(fn func(entry.ID)) {
	s.changeMu.Lock()
	s.onChange = append(s.onChange, fn)
	s.changeMu.Unlock()
}

// RecordUse notes a launch of id. The in-memory snapshot is updated even if
// persisting fails; the persistence error is returned for logging.
func (s *Store) RecordUse(ctx context.Context, id entry.ID) (Usage, error) {
	at := s.now()

	s.writeMu.Lock()
	prev := s.current.Load()
	next := maps.Clone(prev.usage)
	u := next[id]
	u.UseCount++
	if at.After(u.LastUsed) {
		u.LastUsed = at
	}
	next[id] = u
	s.current.Store(&Snapshot{usage: next})
	s.writeMu.Unlock()

	s.changeMu.Lock()
	subs := slices.Clone(s.onChange)
	s.changeMu.Unlock()
	for _, fn := range subs {
		fn(id)
	}

	if err := s.persist.RecordUse(ctx, id, at); err != nil {
		return u, fmt.Errorf("persist mru record: %w", err)
	}
	return u, nil
}

// Close closes the underlying persistence.
func (s *Store) Close() error {
	return s.persist.Close()
}
