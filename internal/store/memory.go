// internal/store/memory.go
//
// In-memory implementation of the Store interface. Used when the server
// runs without a database path, and as the store double in tests.
//
// Characteristics:
//   - Records keyed by username in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
)

type memory struct {
	mu      sync.RWMutex
	records map[string]PlayerRecord
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{records: make(map[string]PlayerRecord)}
}

func (m *memory) Get(ctx context.Context, username string) (PlayerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.records[username]; ok {
		return r, nil
	}
	return PlayerRecord{}, ErrNotFound
}

func (m *memory) Upsert(ctx context.Context, record PlayerRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Username] = record
	return nil
}

// Top sorts by points descending, username ascending on ties, matching
// the sqlite backend so the two are interchangeable.
func (m *memory) Top(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, Entry{Username: r.Username, Points: r.Points})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
