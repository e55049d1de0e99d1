package toolexecutor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a, err := CacheKey("tool_1", map[string]any{"b": 2, "a": "x"})
	require.NoError(t, err)
	b, err := CacheKey("tool_1", map[string]any{"a": "x", "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	other, err := CacheKey("tool_2", map[string]any{"a": "x", "b": 2})
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	empty, err := CacheKey("tool_1", nil)
	require.NoError(t, err)
	alsoEmpty, err := CacheKey("tool_1", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, empty, alsoEmpty)

	_, err = CacheKey("tool_1", map[string]any{"fn": func() {}})
	assert.Error(t, err)
}

func TestResultCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewResultCache(0, clock.Now)
	params := map[string]any{"q": 1}

	cache.Put("t", params, "value")
	got, ok := cache.Get("t", params)
	require.True(t, ok)
	assert.Equal(t, "value", got)

	clock.Advance(DefaultCacheTTL - time.Second)
	_, ok = cache.Get("t", params)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.Get("t", params)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len(), "expired entries are removed on read")
}

func TestResultCache_SkipsNilAndUnencodable(t *testing.T) {
	cache := NewResultCache(time.Minute, nil)

	cache.Put("t", map[string]any{}, nil)
	cache.Put("t", map[string]any{"ch": make(chan int)}, "value")
	assert.Equal(t, 0, cache.Len())

	cache.Put("t", map[string]any{}, 0)
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}
