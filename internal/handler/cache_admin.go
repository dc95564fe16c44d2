package handler

import (
	"encoding/json"
	"log"
	"movie-cache/internal/cache"
	catalogerrors "movie-cache/internal/errors"
	"net/http"
)

// CacheAdminHandler 响应缓存管理接口
type CacheAdminHandler struct {
	cache *cache.Cache[[]byte]
}

func NewCacheAdminHandler(c *cache.Cache[[]byte]) *CacheAdminHandler {
	return &CacheAdminHandler{cache: c}
}

// GetCacheStats 获取缓存统计信息
func (h *CacheAdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.cache.GetStats())
}

// ClearCache 清空缓存
func (h *CacheAdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	h.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"message": "缓存已清空"})
}

// DeleteKey 删除单个缓存键，键不存在时同样返回成功
func (h *CacheAdminHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, catalogerrors.Wrap(catalogerrors.ErrInvalidArgument, err, "invalid request body"))
		return
	}
	if req.Key == "" {
		writeError(w, r, catalogerrors.New(catalogerrors.ErrInvalidArgument, "key is required"))
		return
	}

	h.cache.Delete(req.Key)
	log.Printf("[CacheAdmin] 删除缓存键: %s", req.Key)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.Key})
}

// PurgeExpired 立即清理过期条目
func (h *CacheAdminHandler) PurgeExpired(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": h.cache.ClearExpired()})
}

// ResetStats 重置命中统计
func (h *CacheAdminHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	h.cache.ResetStats()
	writeJSON(w, http.StatusOK, map[string]string{"message": "统计已重置"})
}
