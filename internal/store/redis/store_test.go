package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/disco/internal/cache"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStorePutGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	snap := cache.Snapshot{
		Locator:   "'Vinyl_Collection'!A:L",
		Rows:      [][]string{{"Artist"}, {"Kraftwerk", "Autobahn", "1974"}},
		FetchedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(ctx, snap, time.Minute))

	got, ok, err := s.Get(ctx, snap.Locator)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.Rows, got.Rows)
	assert.True(t, snap.FetchedAt.Equal(got.FetchedAt))

	_, ok, err = s.Get(ctx, "Other!A:L")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, cache.Snapshot{Locator: "A:L"}, 5*time.Minute))
	mr.FastForward(6 * time.Minute)

	_, ok, err := s.Get(ctx, "A:L")
	require.NoError(t, err)
	assert.False(t, ok, "snapshot should expire with its TTL")
}

func TestStoreClearOnlyTouchesSnapshots(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, cache.Snapshot{Locator: "A:L"}, time.Minute))
	require.NoError(t, s.Put(ctx, cache.Snapshot{Locator: "Sheet1!A:L"}, time.Minute))
	require.NoError(t, mr.Set("unrelated", "keep"))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Clear(ctx))

	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists("unrelated"))
}

func TestStoreCorruptSnapshot(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set(RowsKey("A:L"), "not json"))

	_, _, err := s.Get(context.Background(), "A:L")
	assert.Error(t, err)
}

func TestExtractLocator(t *testing.T) {
	loc, ok := ExtractLocator(RowsKey("Sheet1!A:L"))
	assert.True(t, ok)
	assert.Equal(t, "Sheet1!A:L", loc)

	_, ok = ExtractLocator("disco:rows:")
	assert.False(t, ok)
	_, ok = ExtractLocator("other:key")
	assert.False(t, ok)
}
