package handlers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
)

func TestCheckRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	st := checkRedis(ctx, deps.Deps{RedisClient: client})
	assert.True(t, st.OK)
	assert.Equal(t, "optimal", st.Mode)

	mr.Close()

	st = checkRedis(ctx, deps.Deps{RedisClient: client, Production: true})
	assert.False(t, st.OK)
	assert.Equal(t, "unreachable", st.Error)

	st = checkRedis(ctx, deps.Deps{RedisClient: client})
	assert.False(t, st.OK)
	assert.NotEmpty(t, st.Error)
	assert.NotEqual(t, "timeout", st.Error)
	assert.NotEqual(t, "unreachable", st.Error, "development mode reports the ping error")

	st = checkRedis(ctx, deps.Deps{})
	assert.Equal(t, "client not initialized", st.Error)
}
