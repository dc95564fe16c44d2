package handler

import (
	"movie-cache/internal/cache"
	"movie-cache/internal/constants"
	"movie-cache/internal/metrics"
	"movie-cache/internal/models"
	"movie-cache/internal/utils"
	statsync "movie-cache/pkg/sync"
	"net/http"
	"runtime"
	"time"
)

// Metrics 管理后台概览数据
type Metrics struct {
	Uptime       string `json:"uptime"`
	NumGoroutine int    `json:"num_goroutine"`
	MemoryUsage  string `json:"memory_usage"`

	Cache          cache.Stats          `json:"cache"`
	TopSearches    []metrics.SearchTerm `json:"top_searches"`
	TotalSearches  int64                `json:"total_searches"`
	RecentRequests []models.RequestLog  `json:"recent_requests"`

	// 最近请求的来源分布，键为 HIT / MISS / FALLBACK
	CacheStatusStats map[string]int64 `json:"cache_status_stats"`

	// 统计报告上传状态，未启用上传时为空
	Report *statsync.ReportStatus `json:"report,omitempty"`
}

// ReportStatusProvider 提供统计报告的上传状态
type ReportStatusProvider interface {
	Status() statsync.ReportStatus
}

// MetricsHandler 管理后台概览
type MetricsHandler struct {
	cache     *cache.Cache[[]byte]
	searches  *metrics.SearchTracker
	requests  *models.RequestQueue
	reporter  ReportStatusProvider
	startTime time.Time
}

func NewMetricsHandler(c *cache.Cache[[]byte], searches *metrics.SearchTracker, requests *models.RequestQueue, startTime time.Time) *MetricsHandler {
	return &MetricsHandler{
		cache:     c,
		searches:  searches,
		requests:  requests,
		startTime: startTime,
	}
}

// WithReporter 在概览中附带统计报告上传状态
func (h *MetricsHandler) WithReporter(reporter ReportStatusProvider) *MetricsHandler {
	h.reporter = reporter
	return h
}

// GetMetrics GET /admin/api/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	recent := h.requests.GetAll()
	statusStats := make(map[string]int64)
	for _, req := range recent {
		if req.CacheStatus != "" {
			statusStats[req.CacheStatus]++
		}
	}

	var report *statsync.ReportStatus
	if h.reporter != nil {
		status := h.reporter.Status()
		report = &status
	}

	writeJSON(w, http.StatusOK, Metrics{
		Uptime:           utils.FormatUptime(time.Since(h.startTime)),
		NumGoroutine:     runtime.NumGoroutine(),
		MemoryUsage:      utils.FormatBytes(int64(mem.Alloc)),
		Cache:            h.cache.GetStats(),
		TopSearches:      h.searches.TopTerms(constants.Get().DefaultTopSearches),
		TotalSearches:    h.searches.Total(),
		RecentRequests:   recent,
		CacheStatusStats: statusStats,
		Report:           report,
	})
}
