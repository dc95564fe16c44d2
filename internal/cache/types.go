package cache

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrEmptyKey 空键不会被写入缓存
var ErrEmptyKey = errors.New("cache: key must not be empty")

// Config 缓存配置
type Config struct {
	Name       string        // 日志和指标中使用的名称
	MaxSize    int           // 最大条目数，必须为正数
	DefaultTTL time.Duration // Set 未指定 ttl 时使用
	Debug      bool          // 记录每次命中/未命中/过期
	Clock      clock.Clock   // 为空时使用系统时钟
}

// Cache 进程内的 TTL 缓存。
//
// 条目按创建时间排列在 order 链表中，队首是最早写入的条目。缓存已满时
// 淘汰队首，读取不会改变顺序，也不会续期。
type Cache[V any] struct {
	mu         sync.Mutex
	name       string
	items      map[string]*list.Element
	order      *list.List // Front = 最早写入, Back = 最新写入
	maxSize    int
	defaultTTL time.Duration
	debug      bool
	clock      clock.Clock

	stats  counters // ResetStats 清零，供管理接口查看
	totals counters // 进程生命周期内只增不减，供 Prometheus 导出

	cleanupMu   sync.Mutex
	stopCleanup chan struct{}
	cleanupWg   sync.WaitGroup
}

type entry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	expiresAt time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	expired   atomic.Int64
	evictions atomic.Int64
}

func (c *counters) load() Counters {
	return Counters{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Expired:   c.expired.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Counters 命中、未命中、过期和淘汰次数
type Counters struct {
	Hits      int64
	Misses    int64 // 包含过期导致的未命中
	Expired   int64
	Evictions int64
}

// Stats 缓存统计信息
type Stats struct {
	Name       string   `json:"name"`
	Size       int      `json:"size"` // 包含已过期但尚未清理的条目
	Keys       []string `json:"keys"` // 按写入时间从旧到新
	MaxSize    int      `json:"max_size"`
	DefaultTTL string   `json:"default_ttl"`
	HitCount   int64    `json:"hit_count"`
	MissCount  int64    `json:"miss_count"` // 包含过期导致的未命中
	Expired    int64    `json:"expired_count"`
	Evictions  int64    `json:"eviction_count"`
	HitRate    float64  `json:"hit_rate"` // 百分比
}
