package repository

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	wordKeyPrefix = "sensitive_word:"
	wordIndexKey  = "sensitive_words_index"
)

// SensitiveWordRepository 敏感词数据访问接口
type SensitiveWordRepository interface {
	// Save 写入敏感词记录（创建与更新共用）
	Save(ctx context.Context, word *model.SensitiveWord) error

	// GetByID 根据 ID 获取敏感词
	GetByID(ctx context.Context, id string) (*model.SensitiveWord, error)

	// Delete 删除敏感词（缺失 ID 为幂等空操作）
	Delete(ctx context.Context, id string) error

	// ListAll 获取全部敏感词，按创建时间倒序
	ListAll(ctx context.Context) ([]*model.SensitiveWord, error)
}

// wordRepository SensitiveWordRepository 的 Redis 实现
// 布局：hash sensitive_word:{id} + 索引集合 sensitive_words_index
type wordRepository struct {
	rdb *redis.Client
}

// NewSensitiveWordRepository 创建 SensitiveWordRepository
func NewSensitiveWordRepository(rdb *redis.Client) SensitiveWordRepository {
	return &wordRepository{rdb: rdb}
}

// Save 写入敏感词记录
func (r *wordRepository) Save(ctx context.Context, word *model.SensitiveWord) error {
	fields := wordToFields(word)

	if err := r.rdb.HSet(ctx, wordKeyPrefix+word.ID, fields).Err(); err != nil {
		return errors.NewRedisError(err)
	}
	if err := r.rdb.SAdd(ctx, wordIndexKey, word.ID).Err(); err != nil {
		return errors.NewRedisError(err)
	}

	return nil
}

// GetByID 根据 ID 获取敏感词
func (r *wordRepository) GetByID(ctx context.Context, id string) (*model.SensitiveWord, error) {
	fields, err := r.rdb.HGetAll(ctx, wordKeyPrefix+id).Result()
	if err != nil {
		return nil, errors.NewRedisError(err)
	}
	if len(fields) == 0 {
		return nil, errors.NewNotFoundError("Sensitive word")
	}

	return wordFromFields(fields), nil
}

// Delete 删除敏感词
func (r *wordRepository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, wordKeyPrefix+id).Err(); err != nil {
		return errors.NewRedisError(err)
	}
	if err := r.rdb.SRem(ctx, wordIndexKey, id).Err(); err != nil {
		return errors.NewRedisError(err)
	}

	return nil
}

// ListAll 获取全部敏感词，按创建时间倒序
func (r *wordRepository) ListAll(ctx context.Context) ([]*model.SensitiveWord, error) {
	ids, err := r.rdb.SMembers(ctx, wordIndexKey).Result()
	if err != nil {
		return nil, errors.NewRedisError(err)
	}

	words := make([]*model.SensitiveWord, 0, len(ids))
	for _, id := range ids {
		fields, err := r.rdb.HGetAll(ctx, wordKeyPrefix+id).Result()
		if err != nil {
			return nil, errors.NewRedisError(err)
		}
		// 索引中可能残留指向已删除记录的 ID，跳过
		if len(fields) == 0 {
			continue
		}
		words = append(words, wordFromFields(fields))
	}

	sort.Slice(words, func(i, j int) bool {
		return words[i].CreatedAt.After(words[j].CreatedAt)
	})

	return words, nil
}

// wordToFields 序列化为 Redis hash 字段
// enabled 以 "true"/"false" 字符串存储，布尔语义只存在于领域模型
func wordToFields(w *model.SensitiveWord) map[string]interface{} {
	return map[string]interface{}{
		"id":        w.ID,
		"word":      w.Word,
		"category":  string(w.Category),
		"matchType": string(w.MatchType),
		"enabled":   strconv.FormatBool(w.Enabled),
		"createdBy": w.CreatedBy,
		"createdAt": w.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt": w.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// wordFromFields 从 Redis hash 字段反序列化
func wordFromFields(fields map[string]string) *model.SensitiveWord {
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["createdAt"])
	updatedAt, _ := time.Parse(time.RFC3339Nano, fields["updatedAt"])

	return &model.SensitiveWord{
		ID:        fields["id"],
		Word:      fields["word"],
		Category:  model.WordCategory(fields["category"]),
		MatchType: model.MatchType(fields["matchType"]),
		Enabled:   fields["enabled"] == "true",
		CreatedBy: fields["createdBy"],
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
