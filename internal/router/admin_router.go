package router

import (
	"net/http"
	"strings"
)

// SetupAdminRoutes 设置管理员路由，auth 包装所有 RequireAuth 的路由
func SetupAdminRoutes(h Handlers, auth func(http.Handler) http.Handler) ([]Route, RouteHandler) {
	apiRoutes := []Route{
		{http.MethodGet, "/admin/api/metrics", h.Metrics.GetMetrics, true},
		{http.MethodGet, "/admin/api/config/get", h.Config.ServeHTTP, true},
		{http.MethodPost, "/admin/api/config/save", h.Config.ServeHTTP, true},
		{http.MethodPost, "/admin/api/config/reload", h.Config.ServeHTTP, true},
		{http.MethodGet, "/admin/api/cache/stats", h.CacheAdmin.GetCacheStats, true},
		{http.MethodPost, "/admin/api/cache/clear", h.CacheAdmin.ClearCache, true},
		{http.MethodPost, "/admin/api/cache/delete", h.CacheAdmin.DeleteKey, true},
		{http.MethodPost, "/admin/api/cache/purge", h.CacheAdmin.PurgeExpired, true},
		{http.MethodPost, "/admin/api/cache/reset-stats", h.CacheAdmin.ResetStats, true},
		{http.MethodGet, "/admin/api/search/top", h.SearchStats.GetTopSearches, true},
		{http.MethodPost, "/admin/api/search/reset", h.SearchStats.ResetSearches, true},
	}

	adminHandler := RouteHandler{
		Matcher: func(r *http.Request) bool {
			return strings.HasPrefix(r.URL.Path, "/admin/api/")
		},
		Handler: serveRoutes(apiRoutes, auth),
	}

	return apiRoutes, adminHandler
}
