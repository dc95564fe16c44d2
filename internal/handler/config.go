package handler

import (
	"encoding/json"
	"movie-cache/internal/config"
	catalogerrors "movie-cache/internal/errors"
	"net/http"
)

// ConfigHandler 配置管理处理器
type ConfigHandler struct {
	manager *config.ConfigManager
}

// NewConfigHandler 创建新的配置管理处理器
func NewConfigHandler(manager *config.ConfigManager) *ConfigHandler {
	return &ConfigHandler{manager: manager}
}

// ServeHTTP 实现http.Handler接口
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/admin/api/config/get":
		h.handleGetConfig(w, r)
	case "/admin/api/config/save":
		h.handleSaveConfig(w, r)
	case "/admin/api/config/reload":
		h.handleReloadConfig(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleGetConfig 返回当前生效的配置，密钥字段不会输出
func (h *ConfigHandler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.GetConfig())
}

// handleSaveConfig 保存配置，请求体中缺失的字段沿用当前值
func (h *ConfigHandler) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	newConfig := *h.manager.GetConfig()
	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		writeError(w, r, catalogerrors.Wrap(catalogerrors.ErrInvalidArgument, err, "解析配置失败"))
		return
	}

	if err := h.manager.UpdateConfig(&newConfig); err != nil {
		writeError(w, r, catalogerrors.Wrap(catalogerrors.ErrInvalidArgument, err, "配置验证失败"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "配置已更新并生效"})
}

// handleReloadConfig 从磁盘重新加载配置文件
func (h *ConfigHandler) handleReloadConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if err := h.manager.ReloadConfig(); err != nil {
		writeError(w, r, catalogerrors.Wrap(catalogerrors.ErrInvalidConfig, err, "重新加载配置失败"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "配置已重新加载"})
}
