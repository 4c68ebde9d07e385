package cache

import (
	"strings"
	"sync"
	"time"
)

// TTLCache 进程内 TTL 缓存。读路径惰性剔除过期项，不做后台清理；
// 仅作为读加速层，任何写入方必须以数据库为准。
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats 缓存状态快照
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// NewTTLCache 创建缓存实例
func NewTTLCache[V any]() *TTLCache[V] {
	return &TTLCache[V]{entries: make(map[string]entry[V])}
}

// Get 读取缓存；过期条目在读取时删除并按未命中处理
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set 写入缓存；ttl 不为正时直接丢弃
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Invalidate 删除指定键
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateByPrefix 删除指定前缀的全部键
func (c *TTLCache[V]) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear 清空缓存
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Stats 返回当前有效条目数与键列表；统计前先剔除已过期条目
func (c *TTLCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(c.entries))
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			continue
		}
		keys = append(keys, key)
	}
	return Stats{Size: len(keys), Keys: keys}
}
