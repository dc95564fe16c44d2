package config

import "time"

type Config struct {
	Server      ServerConfig      `json:"Server"`      // 监听配置
	Catalog     CatalogConfig     `json:"Catalog"`     // 上游影片目录API
	Cache       CacheConfig       `json:"Cache"`       // 响应缓存
	Search      SearchConfig      `json:"Search"`      // 搜索频率统计
	Compression CompressionConfig `json:"Compression"` // 响应压缩
	Report      ReportConfig      `json:"Report"`      // 统计报告上传
}

type ServerConfig struct {
	Addr       string `json:"Addr"`
	AdminToken string `json:"-"` // 只从环境变量 ADMIN_TOKEN 读取
}

type CatalogConfig struct {
	BaseURL         string `json:"BaseURL"`
	APIKey          string `json:"-"` // 只从环境变量 TMDB_API_KEY 读取
	ReadAccessToken string `json:"-"` // 只从环境变量 TMDB_READ_ACCESS_TOKEN 读取
	Language        string `json:"Language"`
	Timeout         int64  `json:"Timeout"`    // 请求超时（秒）
	MaxRetries      int    `json:"MaxRetries"` // 最大重试次数
	Fallback        bool   `json:"Fallback"`   // 上游失败时返回演示数据
}

// CacheConfig 缓存配置，时间单位均为秒
type CacheConfig struct {
	MaxSize         int   `json:"MaxSize"`
	DefaultTTL      int64 `json:"DefaultTTL"`
	CleanupInterval int64 `json:"CleanupInterval"`
	PopularTTL      int64 `json:"PopularTTL"`
	GenreTTL        int64 `json:"GenreTTL"`
	SearchTTL       int64 `json:"SearchTTL"`
	GenresTTL       int64 `json:"GenresTTL"`
	ListTTL         int64 `json:"ListTTL"`   // top rated / now playing
	DetailTTL       int64 `json:"DetailTTL"` // 影片详情
	Debug           bool  `json:"Debug"`     // 记录每次命中/未命中
}

type SearchConfig struct {
	MaxTerms     int `json:"MaxTerms"`     // 0 表示不限制
	DefaultLimit int `json:"DefaultLimit"` // 热门搜索默认返回条数
}

type CompressionConfig struct {
	Gzip   CompressorConfig `json:"Gzip"`
	Brotli CompressorConfig `json:"Brotli"`
}

type CompressorConfig struct {
	Enabled bool `json:"Enabled"`
	Level   int  `json:"Level"`
}

type ReportConfig struct {
	Enabled  bool   `json:"Enabled"`
	Interval int64  `json:"Interval"` // 上传间隔（分钟）
	Prefix   string `json:"Prefix"`   // S3 对象前缀
}

// Seconds 把以秒为单位的配置值转换为 time.Duration
func Seconds(v int64) time.Duration {
	return time.Duration(v) * time.Second
}
