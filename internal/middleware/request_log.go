package middleware

import (
	"context"
	"log"
	"movie-cache/internal/models"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/woodchen-ink/go-web-utils/iputil"
)

// RequestIDHeader 请求ID响应头，客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext 返回当前请求的ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder 记录状态码
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestLogger 为请求分配ID，记录日志并写入最近请求队列。queue 可为空。
func RequestLogger(queue *models.RequestQueue) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			latency := time.Since(start)
			clientIP := iputil.GetClientIP(r)
			cacheStatus := w.Header().Get("X-Cache-Status")

			log.Printf("[Request] %s %s %s %d %s %s %s",
				id, r.Method, r.URL.Path, rec.status, latency, clientIP, cacheStatus)

			if queue != nil {
				queue.Push(models.RequestLog{
					ID:          id,
					Time:        start,
					Method:      r.Method,
					Path:        r.URL.Path,
					Status:      rec.status,
					Latency:     latency.Milliseconds(),
					CacheStatus: cacheStatus,
					ClientIP:    clientIP,
				})
			}
		})
	}
}
