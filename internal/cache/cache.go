package cache

import (
	"container/list"
	"fmt"
	"log"
	"movie-cache/internal/utils"
	"time"

	"github.com/benbjohnson/clock"
)

// New 创建缓存。MaxSize 和 DefaultTTL 必须为正数。
func New[V any](cfg Config) (*Cache[V], error) {
	if cfg.MaxSize <= 0 {
		return nil, fmt.Errorf("cache: max size must be positive, got %d", cfg.MaxSize)
	}
	if cfg.DefaultTTL <= 0 {
		return nil, fmt.Errorf("cache: default ttl must be positive, got %s", cfg.DefaultTTL)
	}
	if cfg.Name == "" {
		cfg.Name = "cache"
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Cache[V]{
		name:       cfg.Name,
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		debug:      cfg.Debug,
		clock:      cfg.Clock,
	}, nil
}

// Set 写入或覆盖一个条目。ttl <= 0 时使用默认TTL。
// 覆盖会完整替换值和过期时间，并把该键视为最新写入。
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		c.order.MoveToBack(el)
	} else {
		if len(c.items) >= c.maxSize {
			c.evictOldestLocked()
		}
		c.items[key] = c.order.PushBack(&entry[V]{
			key:       key,
			value:     value,
			createdAt: now,
			expiresAt: now.Add(ttl),
		})
	}

	if c.debug {
		log.Printf("[Cache] SET %s/%s (ttl %s)", c.name, key, ttl)
	}
	return nil
}

// Get 读取条目。过期条目在读取时被删除并按未命中处理。
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.count(func(k *counters) { k.misses.Add(1) })
		if c.debug {
			log.Printf("[Cache] MISS %s/%s", c.name, key)
		}
		return zero, false
	}

	e := el.Value.(*entry[V])
	if e.expired(c.clock.Now()) {
		c.removeLocked(el)
		c.count(func(k *counters) {
			k.misses.Add(1)
			k.expired.Add(1)
		})
		if c.debug {
			log.Printf("[Cache] EXPIRED %s/%s", c.name, key)
		}
		return zero, false
	}

	c.count(func(k *counters) { k.hits.Add(1) })
	if c.debug {
		log.Printf("[Cache] HIT %s/%s", c.name, key)
	}
	return e.value, true
}

// Delete 删除条目，不存在时什么也不做
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
		if c.debug {
			log.Printf("[Cache] DEL %s/%s", c.name, key)
		}
	}
}

// Clear 清空缓存
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	log.Printf("[Cache] %s 已清空", c.name)
}

// ClearExpired 删除所有已过期的条目，返回删除数量
func (c *Cache[V]) ClearExpired() int {
	c.mu.Lock()
	removed := c.clearExpiredLocked(c.clock.Now())
	c.mu.Unlock()

	if removed > 0 {
		log.Printf("[Cache] %s 清理了 %d 个过期条目", c.name, removed)
	}
	return removed
}

// Len 返回当前条目数（包含尚未清理的过期条目）
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// GetStats 获取缓存统计信息
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	keys := make([]string, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[V]).key)
	}
	c.mu.Unlock()

	counts := c.stats.load()
	return Stats{
		Name:       c.name,
		Size:       len(keys),
		Keys:       keys,
		MaxSize:    c.maxSize,
		DefaultTTL: c.defaultTTL.String(),
		HitCount:   counts.Hits,
		MissCount:  counts.Misses,
		Expired:    counts.Expired,
		Evictions:  counts.Evictions,
		HitRate:    utils.HitRate(counts.Hits, counts.Misses),
	}
}

// ResetStats 重置 GetStats 中的计数，不影响缓存内容和 Totals
func (c *Cache[V]) ResetStats() {
	c.stats.hits.Store(0)
	c.stats.misses.Store(0)
	c.stats.expired.Store(0)
	c.stats.evictions.Store(0)
}

// Totals 返回自创建以来的累计计数，不受 ResetStats 影响，也不持有缓存锁
func (c *Cache[V]) Totals() Counters {
	return c.totals.load()
}

func (c *Cache[V]) count(inc func(*counters)) {
	inc(&c.stats)
	inc(&c.totals)
}

// evictOldestLocked 淘汰最早写入的条目
func (c *Cache[V]) evictOldestLocked() {
	el := c.order.Front()
	if el == nil {
		return
	}
	e := el.Value.(*entry[V])
	c.removeLocked(el)
	c.count(func(k *counters) { k.evictions.Add(1) })
	log.Printf("[Cache] EVICT %s/%s (created %s)", c.name, e.key, e.createdAt.Format("15:04:05"))
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	e := el.Value.(*entry[V])
	delete(c.items, e.key)
	c.order.Remove(el)
}

func (c *Cache[V]) clearExpiredLocked(now time.Time) int {
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry[V]).expired(now) {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}
