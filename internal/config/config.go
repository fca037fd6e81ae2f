package config

import "time"

// Config 应用配置
type Config struct {
	// Env: 环境模式 (development, production, test)
	Env string `mapstructure:"env"`

	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置（API Key 注册表）
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	// 连接池配置
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnLifetime time.Duration `mapstructure:"conn_lifetime"`
}

// RedisConfig Redis配置（敏感词与违规日志存储）
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 连接池配置
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level: 日志级别 (fatal, error, warn, info, debug, trace)
	Level string `mapstructure:"level"`
	// Format: 日志格式 (json, text)
	Format string `mapstructure:"format"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	// AdminToken: 管理员令牌
	// 用于访问管理 API
	AdminToken string `mapstructure:"admin_token"`
}

// FilterConfig 内容过滤配置
type FilterConfig struct {
	// Enabled: 是否启用敏感词过滤
	// - false 时中间件直接放行所有请求
	Enabled bool `mapstructure:"enabled"`

	// CacheTTL: 敏感词列表缓存有效期
	// - 默认 5 分钟；写操作会主动失效缓存，TTL 只兜底被动刷新
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// RetentionDays: 违规日志保留天数
	// - <= 0 表示关闭清理（显式退出，而非默认无限保留）
	RetentionDays int `mapstructure:"retention_days"`

	// CleanupCron: 过期违规日志清理调度表达式
	// - 默认每天凌晨 03:00
	CleanupCron string `mapstructure:"cleanup_cron"`
}

// NotifyConfig 违规告警配置
type NotifyConfig struct {
	// WebhookURL: 违规告警 Webhook 地址，留空禁用
	WebhookURL string `mapstructure:"webhook_url"`

	// Timeout: Webhook 请求超时
	Timeout time.Duration `mapstructure:"timeout"`
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == "test"
}
