package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/disco/internal/cache"
	"github.com/redis/go-redis/v9"
)

// Store keeps row snapshots in Redis so they survive restarts and can be
// shared by several instances.
type Store struct {
	client *redis.Client
}

var _ cache.Store = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) Name() string { return "redis" }

// Put stores a snapshot with the given TTL
func (s *Store) Put(ctx context.Context, snap cache.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, RowsKey(snap.Locator), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Get retrieves the snapshot of a locator
func (s *Store) Get(ctx context.Context, locator string) (cache.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, RowsKey(locator)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.Snapshot{}, false, nil // Cache miss
		}
		return cache.Snapshot{}, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap cache.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cache.Snapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}
