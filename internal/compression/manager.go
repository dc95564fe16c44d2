package compression

import (
	"movie-cache/internal/config"
	"strconv"
	"strings"
	"sync/atomic"
)

type compressionManager struct {
	gzip   Compressor
	brotli Compressor
}

// NewManager 根据配置创建压缩管理器
func NewManager(cfg config.CompressionConfig) Manager {
	m := &compressionManager{}

	if cfg.Gzip.Enabled {
		m.gzip = NewGzipCompressor(cfg.Gzip.Level)
	}
	if cfg.Brotli.Enabled {
		m.brotli = NewBrotliCompressor(cfg.Brotli.Level)
	}

	return m
}

// SelectCompressor 实现 Manager 接口，brotli 优先
func (m *compressionManager) SelectCompressor(acceptEncoding string) (Compressor, CompressionType) {
	accepted := parseAcceptEncoding(acceptEncoding)

	if m.brotli != nil && accepted[string(CompressionBrotli)] {
		return m.brotli, CompressionBrotli
	}
	if m.gzip != nil && accepted[string(CompressionGzip)] {
		return m.gzip, CompressionGzip
	}

	return nil, ""
}

// parseAcceptEncoding 返回客户端接受的编码，q=0 的编码视为拒绝
func parseAcceptEncoding(header string) map[string]bool {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		ok := true
		if q, found := strings.CutPrefix(strings.TrimSpace(params), "q="); found {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				ok = false
			}
		}
		accepted[name] = ok
	}
	return accepted
}

// DynamicManager 可在配置更新时整体替换的压缩管理器
type DynamicManager struct {
	current atomic.Value // Manager
}

// NewDynamicManager 创建并用 cfg 初始化
func NewDynamicManager(cfg config.CompressionConfig) *DynamicManager {
	d := &DynamicManager{}
	d.Update(cfg)
	return d
}

// Update 用新配置替换当前管理器
func (d *DynamicManager) Update(cfg config.CompressionConfig) {
	d.current.Store(NewManager(cfg))
}

// SelectCompressor 实现 Manager 接口
func (d *DynamicManager) SelectCompressor(acceptEncoding string) (Compressor, CompressionType) {
	return d.current.Load().(Manager).SelectCompressor(acceptEncoding)
}
