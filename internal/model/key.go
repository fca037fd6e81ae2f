package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Key 中继侧 API Key 注册表模型
// 违规记录通过它把 apiKeyId 解析为可读名称
type Key struct {
	bun.BaseModel `bun:"table:keys,alias:k"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	KeyID     string `bun:"key_id,notnull,unique" json:"keyId"`
	Name      string `bun:"name,notnull" json:"name"`
	KeyHash   string `bun:"key_hash,notnull,unique" json:"-"` // 不序列化
	KeyPrefix string `bun:"key_prefix,notnull" json:"keyPrefix"`

	IsEnabled bool       `bun:"is_enabled,notnull,default:true" json:"isEnabled"`
	ExpiresAt *time.Time `bun:"expires_at" json:"expiresAt"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// IsExpired 检查 Key 是否已过期
func (k *Key) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*k.ExpiresAt)
}

// IsActive 检查 Key 是否处于活跃状态
func (k *Key) IsActive() bool {
	return k.IsEnabled && !k.IsExpired()
}
