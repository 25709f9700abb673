package redis

import (
	"context"
	"fmt"
)

// Clear removes all snapshots
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixRows+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete snapshot key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush snapshots: %w", err)
	}
	return nil
}

// Len counts stored snapshots
func (s *Store) Len(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixRows+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, ok := ExtractLocator(iter.Val()); ok {
			n++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}
