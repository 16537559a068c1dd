package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})

	require.NoError(t, c.SetBytes("scalp:TSLA", []byte(`{"status":"NO_SIGNAL"}`), time.Minute))

	b, ok, err := c.GetBytes("scalp:TSLA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"NO_SIGNAL"}`, string(b))
}

func TestRedisCacheMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})

	_, ok, err := c.GetBytes("absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})

	require.NoError(t, c.SetBytes("scalp:NVDA", []byte("{}"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.GetBytes("scalp:NVDA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()

	require.NoError(t, c.SetBytes("k", []byte("v"), 10*time.Millisecond))

	b, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	time.Sleep(20 * time.Millisecond)
	_, ok, err = c.GetBytes("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
