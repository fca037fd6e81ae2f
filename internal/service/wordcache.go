package service

import (
	"sync"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
)

// DefaultWordCacheTTL 敏感词缓存默认有效期
const DefaultWordCacheTTL = 5 * time.Minute

// WordCache 敏感词列表的单槽 TTL 缓存
// 每次写操作都会主动失效；TTL 只兜底被动刷新
type WordCache struct {
	mu        sync.RWMutex
	words     []*model.SensitiveWord
	expiresAt time.Time
	ttl       time.Duration
}

// NewWordCache 创建敏感词缓存
func NewWordCache(ttl time.Duration) *WordCache {
	if ttl <= 0 {
		ttl = DefaultWordCacheTTL
	}
	return &WordCache{ttl: ttl}
}

// Get 返回缓存的快照；过期或未填充时 ok 为 false
func (c *WordCache) Get() ([]*model.SensitiveWord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.words == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.words, true
}

// Set 填充缓存并重置过期时间
func (c *WordCache) Set(words []*model.SensitiveWord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.words = words
	c.expiresAt = time.Now().Add(c.ttl)
}

// Invalidate 使缓存失效，下次读取时从存储重新加载
func (c *WordCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.words = nil
	c.expiresAt = time.Time{}
}
