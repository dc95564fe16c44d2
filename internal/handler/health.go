package handler

import (
	"movie-cache/internal/cache"
	"movie-cache/internal/utils"
	"net/http"
	"time"
)

// HealthHandler 存活检查
type HealthHandler struct {
	cache     *cache.Cache[[]byte]
	startTime time.Time
}

func NewHealthHandler(c *cache.Cache[[]byte], startTime time.Time) *HealthHandler {
	return &HealthHandler{cache: c, startTime: startTime}
}

// HealthResponse 健康状态响应
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	CacheEntries int    `json:"cache_entries"`
}

// ServeHTTP GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Uptime:       utils.FormatUptime(time.Since(h.startTime)),
		CacheEntries: h.cache.Len(),
	})
}
