package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry // locator -> snapshot
	now     func() time.Time
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Name() string { return "memory" }

// Get retrieves a snapshot by locator. Expired entries are reported as misses.
func (m *MemoryStore) Get(_ context.Context, locator string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[locator]
	if !ok || !m.now().Before(e.expiresAt) {
		return Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

// Put adds or replaces the snapshot for its locator.
func (m *MemoryStore) Put(_ context.Context, snap Snapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[snap.Locator] = memoryEntry{snap: snap, expiresAt: m.now().Add(ttl)}
	return nil
}

// Clear drops every snapshot.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of unexpired snapshots.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n, nil
}
