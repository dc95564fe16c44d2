package main

import (
	"context"
	"log"
	"movie-cache/internal/cache"
	"movie-cache/internal/compression"
	"movie-cache/internal/config"
	"movie-cache/internal/constants"
	"movie-cache/internal/handler"
	"movie-cache/internal/metrics"
	"movie-cache/internal/middleware"
	"movie-cache/internal/models"
	"movie-cache/internal/router"
	"movie-cache/internal/service"
	"movie-cache/internal/utils"
	statsync "movie-cache/pkg/sync"
	"net/http"
	"time"
)

const (
	metricsNamespace = "moviecache"
	recentRequests   = 100
	shutdownTimeout  = 10 * time.Second
)

// StatsReport 定期上传的统计快照
type StatsReport struct {
	GeneratedAt   time.Time            `json:"generated_at"`
	Uptime        string               `json:"uptime"`
	Cache         cache.Stats          `json:"cache"`
	TopSearches   []metrics.SearchTerm `json:"top_searches"`
	TotalSearches int64                `json:"total_searches"`
}

func main() {
	startTime := time.Now()

	// 初始化配置管理器
	configPath := "data/config.json"
	configManager, err := config.Init(configPath)
	if err != nil {
		log.Fatal("Error initializing config manager:", err)
	}

	cfg := configManager.GetConfig()
	constants.UpdateFromConfig(cfg)
	params := constants.Get()

	// 响应缓存，容量修改需要重启
	responseCache, err := cache.New[[]byte](cache.Config{
		Name:       "catalog",
		MaxSize:    params.MaxCacheSize,
		DefaultTTL: params.CacheTTL,
		Debug:      cfg.Cache.Debug,
	})
	if err != nil {
		log.Fatal("Error creating cache:", err)
	}
	responseCache.StartCleanup(config.Seconds(cfg.Cache.CleanupInterval))

	searchTracker := metrics.NewSearchTracker(cfg.Search.MaxTerms)
	promMetrics := metrics.Init(metricsNamespace, responseCache, searchTracker)

	retry := service.DefaultRetryConfig
	retry.MaxRetries = params.MaxRetries
	catalog := service.NewCatalogService(responseCache, searchTracker, service.CatalogOptions{
		BaseURL:         cfg.Catalog.BaseURL,
		APIKey:          cfg.Catalog.APIKey,
		ReadAccessToken: cfg.Catalog.ReadAccessToken,
		Language:        cfg.Catalog.Language,
		Fallback:        cfg.Catalog.Fallback,
		TTLs:            service.TTLsFromConfig(cfg),
		Retry:           retry,
		Client:          &http.Client{Timeout: params.UpstreamTimeout},
		Observer:        promMetrics,
	})

	compManager := compression.NewDynamicManager(cfg.Compression)

	// 注册配置更新回调
	config.RegisterUpdateCallback(func(newCfg *config.Config) {
		constants.UpdateFromConfig(newCfg)
		catalog.ApplyConfig(newCfg)
		compManager.Update(newCfg.Compression)
		responseCache.StartCleanup(config.Seconds(newCfg.Cache.CleanupInterval))
		log.Printf("[Config] 目录服务、压缩和清理配置已更新")
	})

	// 统计报告上传
	reporter := startReporter(cfg, func() any {
		return StatsReport{
			GeneratedAt:   time.Now().UTC(),
			Uptime:        utils.FormatUptime(time.Since(startTime)),
			Cache:         responseCache.GetStats(),
			TopSearches:   searchTracker.TopTerms(constants.Get().DefaultTopSearches),
			TotalSearches: searchTracker.Total(),
		}
	})

	// 创建处理器
	requestQueue := models.NewRequestQueue(recentRequests)
	metricsHandler := handler.NewMetricsHandler(responseCache, searchTracker, requestQueue, startTime)
	if reporter != nil {
		metricsHandler.WithReporter(reporter)
	}
	handlers := router.Handlers{
		Catalog:     handler.NewCatalogHandler(catalog),
		CacheAdmin:  handler.NewCacheAdminHandler(responseCache),
		SearchStats: handler.NewSearchStatsHandler(searchTracker),
		Config:      handler.NewConfigHandler(configManager),
		Metrics:     metricsHandler,
		Health:      handler.NewHealthHandler(responseCache, startTime),
		Prometheus:  promMetrics.Handler(),
	}

	if cfg.Server.AdminToken == "" {
		log.Printf("[Server] 未设置 ADMIN_TOKEN，管理接口不做鉴权")
	}
	adminAuth := middleware.AdminAuth(func() string {
		return configManager.GetConfig().Server.AdminToken
	})
	_, adminHandler := router.SetupAdminRoutes(handlers, adminAuth)

	// 构建中间件链
	var h http.Handler = router.NewHandler(router.SetupMainRoutes(handlers, adminHandler))
	h = middleware.Compression(compManager)(h)
	h = middleware.RequestLogger(requestQueue)(h)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 优雅关闭
	done := utils.SetupCloseHandler(func() {
		log.Println("[Server] Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("[Server] Error during server shutdown: %v", err)
		}

		if reporter != nil {
			reporter.Stop()
			if err := reporter.UploadNow(ctx); err != nil {
				log.Printf("[Sync] 退出前上传统计报告失败: %v", err)
			}
		}

		responseCache.Stop()
	})

	log.Printf("[Server] Starting movie cache server on %s", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Error starting server:", err)
	}
	<-done
}

// startReporter 在启用且 S3 环境变量齐全时启动报告上传，否则返回 nil
func startReporter(cfg *config.Config, snapshot statsync.SnapshotFunc) *statsync.Reporter {
	if !cfg.Report.Enabled {
		return nil
	}
	if !statsync.IsConfigComplete() {
		log.Printf("[Sync] Report.Enabled 已开启但缺少 SYNC_S3_* 环境变量，跳过统计上传")
		return nil
	}

	s3Config, err := statsync.NewConfigFromEnv()
	if err != nil {
		log.Printf("[Sync] %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := statsync.NewS3Client(ctx, s3Config)
	if err != nil {
		log.Printf("[Sync] 创建S3客户端失败: %v", err)
		return nil
	}
	if err := client.TestConnection(ctx); err != nil {
		log.Printf("[Sync] S3连接测试失败，仍会按计划重试上传: %v", err)
	}

	reporter := statsync.NewReporter(client, cfg.Report.Prefix, constants.Get().ReportInterval, snapshot, nil)
	reporter.Start()
	return reporter
}
