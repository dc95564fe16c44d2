package middleware

import (
	"bytes"
	"io"
	"movie-cache/internal/compression"
	"movie-cache/internal/config"
	"movie-cache/internal/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jsonPayload = bytes.Repeat([]byte(`{"title":"Cidade de Deus"}`), 100)

func jsonHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache-Status", "HIT")
		w.WriteHeader(status)
		w.Write(jsonPayload)
	})
}

func newCompression() func(http.Handler) http.Handler {
	return Compression(compression.NewManager(config.DefaultConfig().Compression))
}

func TestCompressionBrotli(t *testing.T) {
	h := newCompression()(jsonHandler(http.StatusOK))
	req := httptest.NewRequest(http.MethodGet, "/api/movies/popular", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))
	out, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	assert.Equal(t, jsonPayload, out)
}

func TestCompressionSkipsErrorsAndUnknownTypes(t *testing.T) {
	h := newCompression()(jsonHandler(http.StatusBadGateway))
	req := httptest.NewRequest(http.MethodGet, "/api/movies/popular", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, jsonPayload, rec.Body.Bytes())

	png := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	rec = httptest.NewRecorder()
	newCompression()(png).ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestRequestLoggerRecordsRequest(t *testing.T) {
	queue := models.NewRequestQueue(10)
	h := RequestLogger(queue)(jsonHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=matrix", nil)
	req.RemoteAddr = "203.0.113.7:5123"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	logs := queue.GetAll()
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, "/api/search", logs[0].Path)
	assert.Equal(t, http.StatusOK, logs[0].Status)
	assert.Equal(t, "HIT", logs[0].CacheStatus)
	assert.Contains(t, logs[0].ClientIP, "203.0.113.7")
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	var seen string
	h := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, incoming, seen)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))
}

func TestAdminAuth(t *testing.T) {
	token := "s3cret"
	h := AdminAuth(func() string { return token })(jsonHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 未配置 token 时不校验
	token = ""
	req.Header.Del("Authorization")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
