package cache

import (
	"context"
	"time"
)

// Snapshot is the set of rows read from one locator at one point in time.
type Snapshot struct {
	Locator   string     `json:"locator"`
	Rows      [][]string `json:"rows"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// Store keeps snapshots keyed by locator.
// Implementations must drop an entry once ttl has elapsed.
type Store interface {
	// Get returns the snapshot for locator. ok is false on a miss.
	Get(ctx context.Context, locator string) (snap Snapshot, ok bool, err error)
	Put(ctx context.Context, snap Snapshot, ttl time.Duration) error
	// Clear removes every snapshot.
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	// Name identifies the backend in status reports.
	Name() string
}
