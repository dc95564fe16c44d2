package metrics

import "log"

// Init 创建 Prometheus 指标并注册缓存和搜索统计
func Init(namespace string, cacheStats StatsProvider, tracker *SearchTracker) *Metrics {
	m := NewMetrics(namespace)
	m.RegisterCache(namespace, cacheStats)
	m.RegisterSearchTracker(namespace, tracker)

	log.Printf("[Metrics] 初始化完成")
	return m
}
