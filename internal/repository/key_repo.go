package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/uptrace/bun"
)

// KeyRepository API Key 注册表数据访问接口
// 中继侧的 Key 元数据存放在 PostgreSQL，违规记录用它解析 Key 名称
type KeyRepository interface {
	Repository

	// Create 创建 API Key 记录
	Create(ctx context.Context, key *model.Key) error

	// GetByKeyID 根据对外 Key ID 获取记录
	GetByKeyID(ctx context.Context, keyID string) (*model.Key, error)

	// ResolveName 将 Key ID 解析为可读名称，解析失败返回 "Unknown"
	ResolveName(ctx context.Context, keyID string) string

	// Count 统计 Key 总数
	Count(ctx context.Context) (int, error)
}

// keyRepository KeyRepository 实现
type keyRepository struct {
	*BaseRepository
}

// NewKeyRepository 创建 KeyRepository
func NewKeyRepository(db *bun.DB) KeyRepository {
	return &keyRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create 创建 API Key 记录
func (r *keyRepository) Create(ctx context.Context, key *model.Key) error {
	now := time.Now()
	key.CreatedAt = now
	key.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(key).
		Exec(ctx)

	if err != nil {
		return errors.NewDatabaseError(err)
	}

	return nil
}

// GetByKeyID 根据对外 Key ID 获取记录
func (r *keyRepository) GetByKeyID(ctx context.Context, keyID string) (*model.Key, error) {
	key := new(model.Key)
	err := r.db.NewSelect().
		Model(key).
		Where("key_id = ?", keyID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("Key")
		}
		return nil, errors.NewDatabaseError(err)
	}

	return key, nil
}

// ResolveName 将 Key ID 解析为可读名称
func (r *keyRepository) ResolveName(ctx context.Context, keyID string) string {
	key, err := r.GetByKeyID(ctx, keyID)
	if err != nil {
		return "Unknown"
	}
	return key.Name
}

// Count 统计 Key 总数
func (r *keyRepository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*model.Key)(nil)).
		Count(ctx)

	if err != nil {
		return 0, errors.NewDatabaseError(err)
	}

	return count, nil
}
