package handler

import (
	"encoding/json"
	"log"
	catalogerrors "movie-cache/internal/errors"
	"movie-cache/internal/middleware"
	"net/http"
	"strconv"
	"strings"
)

// CacheStatusHeader 响应来源：HIT / MISS / FALLBACK
const CacheStatusHeader = "X-Cache-Status"

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handler] 编码响应失败: %v", err)
	}
}

// writeError 按错误码映射HTTP状态：参数错误 400，上游失败 502，其他 500
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := catalogerrors.CodeOf(err)
	switch {
	case code == catalogerrors.ErrInvalidArgument:
		status = http.StatusBadRequest
	case catalogerrors.IsUpstream(err):
		status = http.StatusBadGateway
	}

	resp := ErrorResponse{
		Error:     err.Error(),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}
	if code != 0 {
		resp.Code = code.String()
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[Handler] %s %s 失败: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, resp)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:     "method not allowed",
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}

// intParam 读取整数查询参数，缺省时返回 def
func intParam(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, catalogerrors.New(catalogerrors.ErrInvalidArgument, "invalid %s: %q", name, v)
	}
	return n, nil
}

// idParam 读取必填的 ID 参数
func idParam(r *http.Request, name string) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, catalogerrors.New(catalogerrors.ErrInvalidArgument, "missing %s", name)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, catalogerrors.New(catalogerrors.ErrInvalidArgument, "invalid %s: %q", name, v)
	}
	return n, nil
}
