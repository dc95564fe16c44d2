package constants

import (
	"movie-cache/internal/config"
	"sync/atomic"
	"time"
)

// 不随配置变化的上限
const (
	MaxTopSearches = 100 // 热门搜索单次最多返回条数
)

// Values 可由配置文件调整的运行参数。
// 配置更新时整体替换，读取方通过 Get 拿到一致的快照。
type Values struct {
	// 缓存相关
	CacheTTL        time.Duration // 默认缓存过期时间
	MaxCacheSize    int           // 最大缓存条目数
	CleanupInterval time.Duration // 过期条目清理间隔

	// 不同类型数据的缓存时间
	PopularTTL time.Duration // 热门影片
	GenreTTL   time.Duration // 分类影片
	SearchTTL  time.Duration // 搜索结果
	GenresTTL  time.Duration // 分类列表（很少变化）
	ListTTL    time.Duration // 高分 / 正在上映
	DetailTTL  time.Duration // 影片详情

	// 搜索统计相关
	DefaultTopSearches int // 热门搜索默认条数

	// 上游请求相关
	UpstreamTimeout time.Duration
	MaxRetries      int

	// 统计报告
	ReportInterval time.Duration
}

// Defaults 返回内置默认值
func Defaults() Values {
	return Values{
		CacheTTL:           5 * time.Minute,
		MaxCacheSize:       100,
		CleanupInterval:    time.Minute,
		PopularTTL:         10 * time.Minute,
		GenreTTL:           10 * time.Minute,
		SearchTTL:          5 * time.Minute,
		GenresTTL:          24 * time.Hour,
		ListTTL:            10 * time.Minute,
		DetailTTL:          30 * time.Minute,
		DefaultTopSearches: 5,
		UpstreamTimeout:    10 * time.Second,
		MaxRetries:         2,
		ReportInterval:     time.Hour,
	}
}

var current atomic.Pointer[Values]

func init() {
	v := Defaults()
	current.Store(&v)
}

// Get 返回当前参数快照，调用方不得修改
func Get() *Values {
	return current.Load()
}

// UpdateFromConfig 从配置文件更新参数，未设置的项保持原值
func UpdateFromConfig(cfg *config.Config) {
	v := *Get()

	if cfg.Cache.DefaultTTL > 0 {
		v.CacheTTL = config.Seconds(cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.MaxSize > 0 {
		v.MaxCacheSize = cfg.Cache.MaxSize
	}
	if cfg.Cache.CleanupInterval > 0 {
		v.CleanupInterval = config.Seconds(cfg.Cache.CleanupInterval)
	}

	if cfg.Cache.PopularTTL > 0 {
		v.PopularTTL = config.Seconds(cfg.Cache.PopularTTL)
	}
	if cfg.Cache.GenreTTL > 0 {
		v.GenreTTL = config.Seconds(cfg.Cache.GenreTTL)
	}
	if cfg.Cache.SearchTTL > 0 {
		v.SearchTTL = config.Seconds(cfg.Cache.SearchTTL)
	}
	if cfg.Cache.GenresTTL > 0 {
		v.GenresTTL = config.Seconds(cfg.Cache.GenresTTL)
	}
	if cfg.Cache.ListTTL > 0 {
		v.ListTTL = config.Seconds(cfg.Cache.ListTTL)
	}
	if cfg.Cache.DetailTTL > 0 {
		v.DetailTTL = config.Seconds(cfg.Cache.DetailTTL)
	}

	if cfg.Search.DefaultLimit > 0 {
		v.DefaultTopSearches = cfg.Search.DefaultLimit
	}

	if cfg.Catalog.Timeout > 0 {
		v.UpstreamTimeout = config.Seconds(cfg.Catalog.Timeout)
	}
	if cfg.Catalog.MaxRetries >= 0 {
		v.MaxRetries = cfg.Catalog.MaxRetries
	}

	if cfg.Report.Interval > 0 {
		v.ReportInterval = time.Duration(cfg.Report.Interval) * time.Minute
	}

	current.Store(&v)
}

// Reset 恢复默认值，供测试使用
func Reset() {
	v := Defaults()
	current.Store(&v)
}
