package mru

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/entry"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func id(target string) entry.ID {
	return entry.NewID(entry.KindApplication, target)
}

func TestStore_RecordUseUpdatesSnapshot(t *testing.T) {
	// Given: an empty store with a deterministic clock
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewStore(NewMemory(), WithClock(clock.now))
	before := s.Snapshot()

	// When: recording launches
	_, err := s.RecordUse(context.Background(), id("firefox"))
	require.NoError(t, err)
	u, err := s.RecordUse(context.Background(), id("firefox"))
	require.NoError(t, err)
	_, err = s.RecordUse(context.Background(), id("code"))
	require.NoError(t, err)

	// Then: the new snapshot reflects them and the old one is untouched
	assert.Equal(t, 2, u.UseCount)
	assert.Equal(t, 0, before.Len())
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Get(id("firefox")).UseCount)
	assert.Equal(t, 1, snap.Get(id("code")).UseCount)
	assert.Zero(t, snap.Get(id("never")).UseCount)

	recent := snap.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, id("code"), recent[0].ID, "most recent first")
	assert.Len(t, snap.Recent(1), 1)

	rank, ok := snap.Rank(id("code"))
	assert.True(t, ok)
	assert.Equal(t, 0, rank)
	rank, _ = snap.Rank(id("firefox"))
	assert.Equal(t, 1, rank)
	_, ok = snap.Rank(id("never"))
	assert.False(t, ok)
}

func TestStore_UseCountNeverDecreases(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RecordUse(context.Background(), id("term"))
		}()
	}

	last := 0
	for range 200 {
		n := s.Snapshot().Get(id("term")).UseCount
		assert.GreaterOrEqual(t, n, last)
		last = n
	}
	wg.Wait()
	assert.Equal(t, 20, s.Snapshot().Get(id("term")).UseCount)
}

func TestStore_NotifiesOnChange(t *testing.T) {
	s := NewStore(nil)
	var got []entry.ID
	s.OnChange(func(i entry.ID) { got = append(got, i) })

	_, err := s.RecordUse(context.Background(), id("a"))
	require.NoError(t, err)

	assert.Equal(t, []entry.ID{id("a")}, got)
}

type brokenPersistence struct{ *Memory }

func (b *brokenPersistence) RecordUse(context.Context, entry.ID, time.Time) error {
	return errors.New("disk full")
}

func TestStore_PersistFailureKeepsMemoryState(t *testing.T) {
	s := NewStore(&brokenPersistence{Memory: NewMemory()})

	_, err := s.RecordUse(context.Background(), id("a"))

	assert.Error(t, err)
	assert.Equal(t, 1, s.Snapshot().Get(id("a")).UseCount)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	// Given: a database with some history
	path := filepath.Join(t.TempDir(), "mru.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)

	ctx := context.Background()
	t0 := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, db.RecordUse(ctx, id("firefox"), t0))
	require.NoError(t, db.RecordUse(ctx, id("firefox"), t0.Add(time.Minute)))
	require.NoError(t, db.RecordUse(ctx, id("code"), t0.Add(time.Hour)))
	require.NoError(t, db.RecordUse(ctx, id("code"), t0), "older timestamp does not move last_used back")
	require.NoError(t, db.Close())

	// When: reopening and loading into a store
	db, err = OpenSQLite(path)
	require.NoError(t, err)
	s := NewStore(db)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Load(ctx, DefaultLoadLimit))

	// Then: counts and recency survive
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Get(id("firefox")).UseCount)
	assert.Equal(t, 2, snap.Get(id("code")).UseCount)
	assert.True(t, snap.Get(id("code")).LastUsed.Equal(t0.Add(time.Hour)))

	recent, err := db.GetRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, id("code"), recent[0].ID)
}
