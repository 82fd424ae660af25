package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalCache(t *testing.T) {
	InitCache()
	t.Cleanup(CacheClear)

	CacheSet("k1", "v1", time.Minute)
	v, found := CacheGet("k1")
	require.True(t, found)
	assert.Equal(t, "v1", v)

	CacheDelete("k1")
	_, found = CacheGet("k1")
	assert.False(t, found)
}

func TestCacheNilSafe(t *testing.T) {
	Cache = nil

	// 未初始化时读写都不应 panic，读视为未命中
	CacheSet("k", "v", time.Minute)
	_, found := CacheGet("k")
	assert.False(t, found)
	CacheDelete("k")
	CacheClear()
}

func TestQueryCacheTTL(t *testing.T) {
	c := NewQueryCache[string](8, 20*time.Millisecond)

	c.Set("k", "v")
	v, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "v", v)

	time.Sleep(30 * time.Millisecond)
	_, found = c.Get("k")
	assert.False(t, found)
	assert.Zero(t, c.Len())
}

func TestQueryCacheEviction(t *testing.T) {
	c := NewQueryCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // 容量 2，最旧的 a 被淘汰

	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("b")
	assert.True(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
}

func TestQueryCacheClear(t *testing.T) {
	c := NewQueryCache[int](8, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	assert.Equal(t, 5, c.Len())

	c.Delete("k0")
	assert.Equal(t, 4, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}
