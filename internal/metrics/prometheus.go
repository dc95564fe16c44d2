package metrics

import (
	"movie-cache/internal/cache"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider 提供缓存的条目数和累计计数
type StatsProvider interface {
	Len() int
	Totals() cache.Counters
}

// Metrics 汇总缓存、搜索和上游请求的 Prometheus 指标
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Fallbacks        prometheus.Counter
}

// NewMetrics 使用独立的 registry 创建指标
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of catalog API requests by endpoint and result",
		}, []string{"endpoint", "result"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Catalog API request latency in seconds",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_responses_total",
			Help:      "Responses served from demo data after an upstream failure",
		}),
	}
	reg.MustRegister(m.UpstreamRequests, m.UpstreamLatency, m.Fallbacks)
	return m
}

// RegisterCache 导出缓存统计，抓取时读取。
// 计数器读取 Totals，管理接口的 reset-stats 不会让它们回退。
func (m *Metrics) RegisterCache(namespace string, provider StatsProvider) {
	total := func(pick func(cache.Counters) int64) func() float64 {
		return func() float64 { return float64(pick(provider.Totals())) }
	}

	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Current number of cache entries, including expired entries not yet purged",
		}, func() float64 { return float64(provider.Len()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache lookups that returned a live entry",
		}, total(func(c cache.Counters) int64 { return c.Hits })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache lookups that found nothing or an expired entry",
		}, total(func(c cache.Counters) int64 { return c.Misses })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_expired_total",
			Help:      "Entries removed on read because they had expired",
		}, total(func(c cache.Counters) int64 { return c.Expired })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries evicted because the cache was full",
		}, total(func(c cache.Counters) int64 { return c.Evictions })),
	)
}

// RegisterSearchTracker 导出搜索统计
func (m *Metrics) RegisterSearchTracker(namespace string, tracker *SearchTracker) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_terms",
			Help:      "Number of distinct search terms recorded",
		}, func() float64 { return float64(tracker.Len()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of searches recorded",
		}, func() float64 { return float64(tracker.Recorded()) }),
	)
}

// ObserveUpstream 记录一次上游请求，result 取 ok / request_error / status_error / decode_error
func (m *Metrics) ObserveUpstream(endpoint, result string, latency time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, result).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// ObserveFallback 记录一次演示数据回退
func (m *Metrics) ObserveFallback() {
	m.Fallbacks.Inc()
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
