package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"movie-cache/internal/cache"
	"movie-cache/internal/compression"
	"movie-cache/internal/config"
	"movie-cache/internal/handler"
	"movie-cache/internal/metrics"
	"movie-cache/internal/middleware"
	"movie-cache/internal/models"
	"movie-cache/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "admin-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/genre/movie/list":
			w.Write([]byte(`{"genres":[{"id":18,"name":"Drama"}]}`))
		default:
			w.Write([]byte(`{"page":1,"results":[{"id":1,"title":"Central do Brasil"}],"total_pages":1,"total_results":1}`))
		}
	}))
	t.Cleanup(upstream.Close)

	c, err := cache.New[[]byte](cache.Config{Name: "catalog", MaxSize: 10, DefaultTTL: time.Minute})
	require.NoError(t, err)
	tracker := metrics.NewSearchTracker(0)
	m := metrics.NewMetrics("moviecache")
	m.RegisterCache("moviecache", c)
	m.RegisterSearchTracker("moviecache", tracker)

	svc := service.NewCatalogService(c, tracker, service.CatalogOptions{
		BaseURL:  upstream.URL,
		APIKey:   "k",
		Retry:    service.RetryConfig{MaxRetries: 0},
		Observer: m,
	})

	cm, err := config.NewConfigManager(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	queue := models.NewRequestQueue(10)
	start := time.Now()
	h := Handlers{
		Catalog:     handler.NewCatalogHandler(svc),
		CacheAdmin:  handler.NewCacheAdminHandler(c),
		SearchStats: handler.NewSearchStatsHandler(tracker),
		Config:      handler.NewConfigHandler(cm),
		Metrics:     handler.NewMetricsHandler(c, tracker, queue, start),
		Health:      handler.NewHealthHandler(c, start),
		Prometheus:  m.Handler(),
	}

	_, adminHandler := SetupAdminRoutes(h, middleware.AdminAuth(func() string { return adminToken }))
	var root http.Handler = NewHandler(SetupMainRoutes(h, adminHandler))
	root = middleware.Compression(compression.NewManager(config.DefaultConfig().Compression))(root)
	root = middleware.RequestLogger(queue)(root)

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestCatalogRoutesUseCache(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/movies/popular", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache-Status"))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp = get(t, srv, "/api/movies/popular", "")
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache-Status"))
	assert.Contains(t, readBody(t, resp), "Central do Brasil")

	resp = get(t, srv, "/api/genres", "")
	assert.Contains(t, readBody(t, resp), "Drama")
}

func TestUnknownRoutes(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/unknown", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/nothing", "").StatusCode)

	resp, err := srv.Client().Post(srv.URL+"/api/genres", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, get(t, srv, "/admin/api/cache/stats", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, srv, "/admin/api/search/top", "wrong").StatusCode)

	get(t, srv, "/api/search?q=Bacurau", "")
	resp := get(t, srv, "/admin/api/search/top", adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `{"term":"bacurau","count":1}`)

	resp = get(t, srv, "/admin/api/cache/stats", adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"search_bacurau_1"`)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin/api/cache/purge", strings.NewReader(""))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndPrometheus(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	get(t, srv, "/api/movies/top-rated", "")
	resp = get(t, srv, "/metrics", "")
	body := readBody(t, resp)
	assert.Contains(t, body, "moviecache_cache_entries 1")
	assert.Contains(t, body, `moviecache_upstream_requests_total{endpoint="top_rated",result="ok"} 1`)
}
