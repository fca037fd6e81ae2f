package database

import (
	"context"
	"fmt"

	"github.com/ding113/claude-content-guard/internal/config"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// NewRedis 创建 Redis 客户端
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Int("db", cfg.DB).
		Msg("Redis connected")

	return client, nil
}

// CloseRedis 关闭 Redis 连接
func CloseRedis(client *redis.Client) error {
	if client != nil {
		logger.Info().Msg("Closing Redis connection")
		return client.Close()
	}
	return nil
}
