package repository

import (
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// Factory Repository 工厂（依赖注入容器）
// 使用 sync.Once 保证并发安全的懒加载
type Factory struct {
	db  *bun.DB
	rdb *redis.Client

	// 缓存的 Repository 实例（懒加载）
	wordRepo      SensitiveWordRepository
	wordOnce      sync.Once
	violationRepo ViolationRepository
	violationOnce sync.Once
	keyRepo       KeyRepository
	keyOnce       sync.Once
}

// NewFactory 创建 Repository 工厂
func NewFactory(db *bun.DB, rdb *redis.Client) *Factory {
	return &Factory{db: db, rdb: rdb}
}

// Word 获取 SensitiveWord Repository（并发安全）
func (f *Factory) Word() SensitiveWordRepository {
	f.wordOnce.Do(func() {
		f.wordRepo = NewSensitiveWordRepository(f.rdb)
	})
	return f.wordRepo
}

// Violation 获取 Violation Repository（并发安全）
func (f *Factory) Violation() ViolationRepository {
	f.violationOnce.Do(func() {
		f.violationRepo = NewViolationRepository(f.rdb)
	})
	return f.violationRepo
}

// Key 获取 Key Repository（并发安全）
func (f *Factory) Key() KeyRepository {
	f.keyOnce.Do(func() {
		f.keyRepo = NewKeyRepository(f.db)
	})
	return f.keyRepo
}

// DB 获取数据库实例
func (f *Factory) DB() *bun.DB {
	return f.db
}

// Redis 获取 Redis 客户端
func (f *Factory) Redis() *redis.Client {
	return f.rdb
}
