package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load 加载配置
func Load() (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 配置文件设置
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/claude-content-guard")

	// 环境变量设置
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 绑定环境变量
	bindEnvVariables(v)

	// 读取配置文件（可选）
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在，使用环境变量和默认值
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "claude_content_guard")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_lifetime", 30*time.Minute)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Auth defaults
	v.SetDefault("auth.admin_token", "")

	// Filter defaults
	v.SetDefault("filter.enabled", true)
	v.SetDefault("filter.cache_ttl", 5*time.Minute)
	v.SetDefault("filter.retention_days", 90)
	v.SetDefault("filter.cleanup_cron", "0 3 * * *")

	// Notify defaults
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.timeout", 10*time.Second)
}

// bindEnvVariables 绑定环境变量
func bindEnvVariables(v *viper.Viper) {
	// Server
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Database
	_ = v.BindEnv("database.host", "DATABASE_HOST")
	_ = v.BindEnv("database.port", "DATABASE_PORT")
	_ = v.BindEnv("database.user", "DATABASE_USER")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD")
	_ = v.BindEnv("database.dbname", "DATABASE_NAME")
	_ = v.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	_ = v.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.conn_lifetime", "DATABASE_CONN_LIFETIME")

	// Redis
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("redis.pool_size", "REDIS_POOL_SIZE")
	_ = v.BindEnv("redis.min_idle_conns", "REDIS_MIN_IDLE_CONNS")
	_ = v.BindEnv("redis.dial_timeout", "REDIS_DIAL_TIMEOUT")
	_ = v.BindEnv("redis.read_timeout", "REDIS_READ_TIMEOUT")
	_ = v.BindEnv("redis.write_timeout", "REDIS_WRITE_TIMEOUT")

	// Log
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")

	// Auth
	_ = v.BindEnv("auth.admin_token", "ADMIN_TOKEN")

	// Filter
	_ = v.BindEnv("filter.enabled", "SENSITIVE_WORD_FILTER_ENABLED")
	_ = v.BindEnv("filter.cache_ttl", "SENSITIVE_WORD_CACHE_TTL")
	_ = v.BindEnv("filter.retention_days", "VIOLATION_LOG_RETENTION_DAYS")
	_ = v.BindEnv("filter.cleanup_cron", "VIOLATION_LOG_CLEANUP_CRON")

	// Notify
	_ = v.BindEnv("notify.webhook_url", "VIOLATION_WEBHOOK_URL")
	_ = v.BindEnv("notify.timeout", "VIOLATION_WEBHOOK_TIMEOUT")
}
