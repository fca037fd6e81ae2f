// Package repository 提供数据访问层的接口定义和实现
// 敏感词与违规日志存储在 Redis，API Key 注册表存储在 PostgreSQL
package repository

import (
	"github.com/uptrace/bun"
)

// Repository 基础 Repository 接口
type Repository interface {
	DB() *bun.DB
}

// BaseRepository 基础 Repository 实现，PostgreSQL Repository 的公共基类
type BaseRepository struct {
	db *bun.DB
}

// NewBaseRepository 创建基础 Repository
func NewBaseRepository(db *bun.DB) *BaseRepository {
	return &BaseRepository{db: db}
}

// DB 获取数据库实例
func (r *BaseRepository) DB() *bun.DB {
	return r.db
}
