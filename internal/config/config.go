package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/joho/godotenv"
)

var (
	configCallbacks []func(*Config)
	callbackMutex   sync.RWMutex
)

type ConfigManager struct {
	config     atomic.Value
	configPath string
	mu         sync.Mutex
}

func NewConfigManager(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath: configPath,
	}

	config, err := cm.loadConfigFromFile()
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cm.config.Store(config)
	log.Printf("[ConfigManager] 配置已加载: 缓存上限 %d 条, 默认TTL %ds", config.Cache.MaxSize, config.Cache.DefaultTTL)

	return cm, nil
}

// loadConfigFromFile 从文件加载配置
func (cm *ConfigManager) loadConfigFromFile() (*Config, error) {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		// 如果文件不存在，创建默认配置
		if os.IsNotExist(err) {
			if createErr := cm.createDefaultConfig(); createErr != nil {
				return nil, createErr
			}
			return cm.loadConfigFromFile()
		}
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cm.configPath, err)
	}

	return config, nil
}

// createDefaultConfig 创建默认配置文件
func (cm *ConfigManager) createDefaultConfig() error {
	if dir := filepath.Dir(cm.configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return err
	}

	log.Printf("[ConfigManager] 创建默认配置: %s", cm.configPath)
	return os.WriteFile(cm.configPath, data, 0644)
}

// DefaultConfig 返回默认配置，TTL 取自原前端的缓存策略
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":3336",
		},
		Catalog: CatalogConfig{
			BaseURL:    "https://api.themoviedb.org/3",
			Language:   "pt-BR",
			Timeout:    10,
			MaxRetries: 2,
			Fallback:   true,
		},
		Cache: CacheConfig{
			MaxSize:         100,
			DefaultTTL:      5 * 60,
			CleanupInterval: 60,
			PopularTTL:      10 * 60,
			GenreTTL:        10 * 60,
			SearchTTL:       5 * 60,
			GenresTTL:       24 * 60 * 60,
			ListTTL:         10 * 60,
			DetailTTL:       30 * 60,
		},
		Search: SearchConfig{
			MaxTerms:     0,
			DefaultLimit: 5,
		},
		Compression: CompressionConfig{
			Gzip: CompressorConfig{
				Enabled: true,
				Level:   6,
			},
			Brotli: CompressorConfig{
				Enabled: true,
				Level:   6,
			},
		},
		Report: ReportConfig{
			Enabled:  false,
			Interval: 60,
			Prefix:   "movie-cache/reports",
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("Cache.MaxSize must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("Cache.DefaultTTL must be positive, got %d", c.Cache.DefaultTTL)
	}
	if c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("Cache.CleanupInterval must not be negative")
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("Catalog.BaseURL is required")
	}
	if c.Search.MaxTerms < 0 {
		return fmt.Errorf("Search.MaxTerms must not be negative")
	}
	return nil
}

// LoadEnv 加载 .env 文件，文件不存在时忽略
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] 加载 .env 失败: %v", err)
	}
}

// applyEnvOverrides 用环境变量覆盖文件配置
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		cfg.Catalog.APIKey = v
	}
	if v := os.Getenv("TMDB_READ_ACCESS_TOKEN"); v != "" {
		cfg.Catalog.ReadAccessToken = v
	}
	if v := os.Getenv("TMDB_BASE_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config.Load().(*Config)
}

// UpdateConfig 更新配置
func (cm *ConfigManager) UpdateConfig(newConfig *Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := newConfig.Validate(); err != nil {
		return err
	}

	// 环境变量中的密钥不落盘，沿用当前值
	current := cm.GetConfig()
	newConfig.Server.AdminToken = current.Server.AdminToken
	newConfig.Catalog.APIKey = current.Catalog.APIKey
	newConfig.Catalog.ReadAccessToken = current.Catalog.ReadAccessToken

	if err := cm.saveConfigToFile(newConfig); err != nil {
		return err
	}

	cm.config.Store(newConfig)
	TriggerCallbacks(newConfig)

	log.Printf("[ConfigManager] 配置已更新")
	return nil
}

// saveConfigToFile 保存配置到文件
func (cm *ConfigManager) saveConfigToFile(config *Config) error {
	configData, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	tempFile := cm.configPath + ".tmp"
	if err := os.WriteFile(tempFile, configData, 0644); err != nil {
		return err
	}

	return os.Rename(tempFile, cm.configPath)
}

// ReloadConfig 重新加载配置文件
func (cm *ConfigManager) ReloadConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	config, err := cm.loadConfigFromFile()
	if err != nil {
		return err
	}
	applyEnvOverrides(config)
	if err := config.Validate(); err != nil {
		return err
	}

	cm.config.Store(config)
	TriggerCallbacks(config)

	log.Printf("[ConfigManager] 配置已重新加载")
	return nil
}

// RegisterUpdateCallback 注册配置更新回调函数
func RegisterUpdateCallback(callback func(*Config)) {
	callbackMutex.Lock()
	defer callbackMutex.Unlock()
	configCallbacks = append(configCallbacks, callback)
}

// TriggerCallbacks 触发所有回调
func TriggerCallbacks(cfg *Config) {
	callbackMutex.RLock()
	defer callbackMutex.RUnlock()
	for _, callback := range configCallbacks {
		callback(cfg)
	}

	log.Printf("[Config] 触发了 %d 个配置更新回调", len(configCallbacks))
}
