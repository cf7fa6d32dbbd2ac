package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c, err := NewCache(&config.RedisConfig{Host: mr.Host(), Port: port, PoolSize: 2}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestCache_GetSetDel(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	n, err := c.Exists(ctx, "k", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, c.Del(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	assert.NoError(t, c.Health(ctx))
}

func TestCache_Expiration(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "leaderboard:users", "[]", time.Minute))
	mr.FastForward(2 * time.Minute)

	val, err := c.Get(ctx, "leaderboard:users")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestJSONHelpers(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	type entry struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	var got []entry
	hit, err := GetJSON(ctx, c, "cities", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, c, "cities", []entry{{"Pune", 92}}, time.Minute))

	hit, err = GetJSON(ctx, c, "cities", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []entry{{"Pune", 92}}, got)

	require.NoError(t, c.Set(ctx, "broken", "{not json", time.Minute))
	_, err = GetJSON(ctx, c, "broken", &got)
	assert.Error(t, err)
}

func TestNewCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	_, err = NewCache(&config.RedisConfig{Host: host, Port: port}, logger.Nop())
	assert.Error(t, err)
}
