package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)
}

func TestMemCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	now = now.Add(2 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries must not be returned")
}

func TestMemCacheSetIfAbsentIsExclusive(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	won, err := c.SetIfAbsent(ctx, "k", []byte("first"), time.Minute)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = c.SetIfAbsent(ctx, "k", []byte("second"), time.Minute)
	require.NoError(t, err)
	assert.False(t, won, "second caller must not win the race")

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("first"), val)
}

func TestMemCacheSetIfAbsentAfterExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	won, err := c.SetIfAbsent(ctx, "k", []byte("first"), time.Second)
	require.NoError(t, err)
	assert.True(t, won)

	now = now.Add(2 * time.Second)
	won, err = c.SetIfAbsent(ctx, "k", []byte("second"), time.Second)
	require.NoError(t, err)
	assert.True(t, won, "an expired key is up for grabs again")
}

func TestMemCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestOnceSemantics(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	first, err := Once(ctx, c, DedupKey("notify", "abc"), time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := Once(ctx, c, DedupKey("notify", "abc"), time.Minute)
	require.NoError(t, err)
	assert.False(t, second)
}
