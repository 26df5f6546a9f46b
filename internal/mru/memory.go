package mru

import (
	"context"
	"sync"
	"time"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// Memory is a Persistence that forgets everything on exit. It backs the
// Store when the database cannot be opened.
type Memory struct {
	mu    sync.Mutex
	usage map[entry.ID]Usage
}

// NewMemory returns an empty in-memory persistence.
func NewMemory() *Memory {
	return &Memory{usage: make(map[entry.ID]Usage)}
}

// GetRecent implements Persistence.
func (m *Memory) GetRecent(_ context.Context, n int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&Snapshot{usage: m.usage}).Recent(n), nil
}

// RecordUse implements Persistence.
func (m *Memory) RecordUse(_ context.Context, id entry.ID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.usage[id]
	u.UseCount++
	if at.After(u.LastUsed) {
		u.LastUsed = at
	}
	m.usage[id] = u
	return nil
}

// Close implements Persistence.
func (m *Memory) Close() error { return nil }
