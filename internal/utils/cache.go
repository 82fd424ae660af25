package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 全局缓存实例。写入不做失效处理，过期前读到旧数据是可接受的
var Cache *cache.Cache

// InitCache 初始化缓存
func InitCache() {
	// 默认过期时间10分钟，清理间隔15分钟
	Cache = cache.New(10*time.Minute, 15*time.Minute)
}

// CacheGet 获取缓存值。缓存未初始化时视为全部未命中
func CacheGet(key string) (interface{}, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(key)
}

// CacheSet 设置缓存值
func CacheSet(key string, value interface{}, duration time.Duration) {
	if Cache == nil {
		return
	}
	Cache.Set(key, value, duration)
}

// CacheDelete 删除缓存
func CacheDelete(key string) {
	if Cache == nil {
		return
	}
	Cache.Delete(key)
}

// CacheClear 清空所有缓存
func CacheClear() {
	if Cache == nil {
		return
	}
	Cache.Flush()
}

// queryItem 包装实际的数据，增加过期时间
type queryItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// QueryCache 组合查询结果缓存封装，容量有上限
type QueryCache[T any] struct {
	storage *lru.Cache[string, queryItem[T]]
	ttl     time.Duration
}

// NewQueryCache size 是最大缓存条数，ttl 是数据有效期
func NewQueryCache[T any](size int, ttl time.Duration) *QueryCache[T] {
	// lru.New 是线程安全的
	c, _ := lru.New[string, queryItem[T]](size)
	return &QueryCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入（LRU 的 Add 会自动处理更新）
func (c *QueryCache[T]) Set(key string, value T) {
	c.storage.Add(key, queryItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	})
}

// Get 读取，带过期检查
func (c *QueryCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	// 检查是否过期
	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *QueryCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *QueryCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *QueryCache[T]) Len() int {
	return c.storage.Len()
}
