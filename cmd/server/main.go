package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ding113/claude-content-guard/internal/config"
	"github.com/ding113/claude-content-guard/internal/database"
	"github.com/ding113/claude-content-guard/internal/handler"
	"github.com/ding113/claude-content-guard/internal/middleware"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/ding113/claude-content-guard/internal/pkg/validator"
	"github.com/ding113/claude-content-guard/internal/repository"
	"github.com/ding113/claude-content-guard/internal/scheduler"
	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	logger.Info().Msg("Starting Claude Content Guard...")

	// 初始化验证器
	validator.Init()

	// 连接数据库
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	// 连接 Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	// 组装服务
	repos := repository.NewFactory(db, rdb)
	wordCache := service.NewWordCache(cfg.Filter.CacheTTL)
	wordService := service.NewWordService(repos.Word(), wordCache)
	contentFilter := service.NewContentFilter(wordService)
	notifier := service.NewNotifier(cfg.Notify)
	violationService := service.NewViolationService(repos.Violation(), notifier)
	statsService := service.NewStatsService(wordService, violationService)

	// 启动违规日志清理调度器
	cleanup := scheduler.NewCleanupScheduler(violationService, cfg.Filter)
	if err := cleanup.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cleanup scheduler")
	}
	defer cleanup.Stop()

	// 创建 Gin 引擎
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, db, rdb, repos, wordService, contentFilter, violationService, statsService)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		logger.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Server listening")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// setupRouter 设置路由
func setupRouter(
	cfg *config.Config,
	db *bun.DB,
	rdb *redis.Client,
	repos *repository.Factory,
	wordService *service.WordService,
	contentFilter *service.ContentFilter,
	violationService *service.ViolationService,
	statsService *service.StatsService,
) *gin.Engine {
	router := gin.New()

	// 添加中间件
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	// 健康检查
	router.GET("/health", healthCheck(db, rdb))

	// 代理 API 路由组：内容过滤中间件挂在转发入口前
	v1 := router.Group("/v1")
	v1.Use(middleware.ContentFilter(cfg.Filter, contentFilter, violationService, repos.Key()))
	{
		v1.POST("/messages", forwardPlaceholder)
		v1.POST("/chat/completions", forwardPlaceholder)
	}

	wordHandler := handler.NewWordHandler(wordService, contentFilter)
	violationHandler := handler.NewViolationHandler(violationService, cfg.Filter)
	statsHandler := handler.NewStatsHandler(statsService)

	// 管理 API 路由组
	api := router.Group("/api")
	api.Use(middleware.AdminAuth(cfg.Auth.AdminToken))
	{
		words := api.Group("/sensitive-words")
		{
			words.POST("", wordHandler.Create)
			words.GET("", wordHandler.List)
			words.GET("/stats", wordHandler.Stats)
			words.POST("/batch-delete", wordHandler.BatchDelete)
			words.POST("/batch-import", wordHandler.BatchImport)
			words.POST("/test", wordHandler.Test)
			words.POST("/refresh-cache", wordHandler.RefreshCache)
			words.GET("/:id", wordHandler.Get)
			words.PUT("/:id", wordHandler.Update)
			words.DELETE("/:id", wordHandler.Delete)
		}

		violations := api.Group("/violations")
		{
			violations.GET("", violationHandler.List)
			violations.GET("/stats", violationHandler.Stats)
			violations.POST("/batch-delete", violationHandler.BatchDelete)
			violations.POST("/cleanup", violationHandler.Cleanup)
			violations.GET("/:id", violationHandler.Get)
			violations.DELETE("/:id", violationHandler.Delete)
		}

		api.GET("/stats/overview", statsHandler.Overview)
	}

	return router
}

// requestLogger 请求日志中间件
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("Request")
	}
}

// healthCheck 健康检查处理器
func healthCheck(db *bun.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// 检查数据库连接
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}

		// 检查 Redis 连接
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"redis":    "disconnected",
				"database": "connected",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"redis":    "connected",
		})
	}
}

// forwardPlaceholder 转发占位处理器
// 上游转发由中继主服务承担，这里只负责过滤决策
func forwardPlaceholder(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"filtered": false,
		"message":  "Content passed moderation",
	})
}
