package router

import (
	"log"
	"movie-cache/internal/handler"
	"net/http"
	"strings"
)

// Route 定义路由结构
type Route struct {
	Method      string
	Pattern     string
	Handler     http.HandlerFunc
	RequireAuth bool
}

// RouteHandler 定义路由处理器结构
type RouteHandler struct {
	Matcher func(*http.Request) bool
	Handler http.Handler
}

// Handlers 路由用到的全部处理器
type Handlers struct {
	Catalog     *handler.CatalogHandler
	CacheAdmin  *handler.CacheAdminHandler
	SearchStats *handler.SearchStatsHandler
	Config      *handler.ConfigHandler
	Metrics     *handler.MetricsHandler
	Health      http.Handler
	Prometheus  http.Handler
}

// SetupAPIRoutes 设置影片目录接口
func SetupAPIRoutes(h Handlers) []Route {
	return []Route{
		{http.MethodGet, "/api/movies/popular", h.Catalog.Popular, false},
		{http.MethodGet, "/api/movies/top-rated", h.Catalog.TopRated, false},
		{http.MethodGet, "/api/movies/now-playing", h.Catalog.NowPlaying, false},
		{http.MethodGet, "/api/movies/genre", h.Catalog.ByGenre, false},
		{http.MethodGet, "/api/movies/detail", h.Catalog.Details, false},
		{http.MethodGet, "/api/search", h.Catalog.Search, false},
		{http.MethodGet, "/api/genres", h.Catalog.Genres, false},
	}
}

// SetupMainRoutes 设置主要路由，按顺序匹配
func SetupMainRoutes(h Handlers, adminHandler RouteHandler) []RouteHandler {
	apiRoutes := SetupAPIRoutes(h)

	return []RouteHandler{
		{
			Matcher: func(r *http.Request) bool {
				return r.URL.Path == "/health"
			},
			Handler: h.Health,
		},
		{
			Matcher: func(r *http.Request) bool {
				return r.URL.Path == "/metrics"
			},
			Handler: h.Prometheus,
		},
		{
			Matcher: func(r *http.Request) bool {
				return strings.HasPrefix(r.URL.Path, "/api/")
			},
			Handler: serveRoutes(apiRoutes, nil),
		},
		adminHandler,
	}
}

// NewHandler 依次尝试每个路由处理器
func NewHandler(handlers []RouteHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range handlers {
			if h.Matcher(r) {
				h.Handler.ServeHTTP(w, r)
				return
			}
		}

		log.Printf("[Router] 未找到处理器: %s", r.URL.Path)
		http.NotFound(w, r)
	})
}

// serveRoutes 按路径匹配路由表，路径匹配但方法不符时返回 405
func serveRoutes(routes []Route, auth func(http.Handler) http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pathMatched := false
		for _, route := range routes {
			if r.URL.Path != route.Pattern {
				continue
			}
			pathMatched = true
			if r.Method != route.Method && !(route.Method == http.MethodGet && r.Method == http.MethodHead) {
				continue
			}

			if route.RequireAuth && auth != nil {
				auth(route.Handler).ServeHTTP(w, r)
			} else {
				route.Handler(w, r)
			}
			return
		}

		if pathMatched {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.NotFound(w, r)
	})
}
