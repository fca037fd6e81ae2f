package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	violationKeyPrefix      = "violation_log:"
	violationGlobalIndexKey = "violation_logs_global"
	violationKeyIndexPrefix = "violation_logs_by_key:"
)

// ViolationRepository 违规日志数据访问接口
type ViolationRepository interface {
	// Insert 写入违规记录：hash 正文 + 全局索引 + 按 Key 索引
	Insert(ctx context.Context, record *model.ViolationRecord) error

	// GetByID 根据 ID 获取违规记录
	GetByID(ctx context.Context, id string) (*model.ViolationRecord, error)

	// CountRange 统计索引中时间范围内的记录数
	CountRange(ctx context.Context, apiKeyID string, start, end *time.Time) (int, error)

	// ListRange 按时间戳倒序取一页记录；apiKeyID 为空时走全局索引
	// 索引中指向缺失正文的 ID 会被跳过而非报错
	ListRange(ctx context.Context, apiKeyID string, start, end *time.Time, offset, limit int) ([]*model.ViolationRecord, error)

	// Delete 删除违规记录并清理两个索引
	Delete(ctx context.Context, id string) error

	// ExpiredIDs 返回全局索引中早于 cutoff 的全部记录 ID
	ExpiredIDs(ctx context.Context, cutoff time.Time) ([]string, error)
}

// violationRepository ViolationRepository 的 Redis 实现
type violationRepository struct {
	rdb *redis.Client
}

// NewViolationRepository 创建 ViolationRepository
func NewViolationRepository(rdb *redis.Client) ViolationRepository {
	return &violationRepository{rdb: rdb}
}

// Insert 写入违规记录
func (r *violationRepository) Insert(ctx context.Context, record *model.ViolationRecord) error {
	fields, err := violationToFields(record)
	if err != nil {
		return errors.NewInternalError("failed to encode violation record").WithError(err)
	}

	score := float64(record.Timestamp.UnixMilli())

	// 三步写入不在同一事务内；读取方需容忍悬空索引项
	if err := r.rdb.HSet(ctx, violationKeyPrefix+record.ID, fields).Err(); err != nil {
		return errors.NewRedisError(err)
	}
	if err := r.rdb.ZAdd(ctx, violationKeyIndexPrefix+record.APIKeyID, redis.Z{
		Score:  score,
		Member: record.ID,
	}).Err(); err != nil {
		return errors.NewRedisError(err)
	}
	if err := r.rdb.ZAdd(ctx, violationGlobalIndexKey, redis.Z{
		Score:  score,
		Member: record.ID,
	}).Err(); err != nil {
		return errors.NewRedisError(err)
	}

	return nil
}

// GetByID 根据 ID 获取违规记录
func (r *violationRepository) GetByID(ctx context.Context, id string) (*model.ViolationRecord, error) {
	fields, err := r.rdb.HGetAll(ctx, violationKeyPrefix+id).Result()
	if err != nil {
		return nil, errors.NewRedisError(err)
	}
	if len(fields) == 0 {
		return nil, errors.NewNotFoundError("Violation log")
	}

	return violationFromFields(fields), nil
}

// CountRange 统计索引中时间范围内的记录数
func (r *violationRepository) CountRange(ctx context.Context, apiKeyID string, start, end *time.Time) (int, error) {
	minScore, maxScore := scoreRange(start, end)

	total, err := r.rdb.ZCount(ctx, r.indexKey(apiKeyID), minScore, maxScore).Result()
	if err != nil {
		return 0, errors.NewRedisError(err)
	}

	return int(total), nil
}

// ListRange 按时间戳倒序取一页记录
func (r *violationRepository) ListRange(ctx context.Context, apiKeyID string, start, end *time.Time, offset, limit int) ([]*model.ViolationRecord, error) {
	minScore, maxScore := scoreRange(start, end)

	ids, err := r.rdb.ZRevRangeByScore(ctx, r.indexKey(apiKeyID), &redis.ZRangeBy{
		Min:    minScore,
		Max:    maxScore,
		Offset: int64(offset),
		Count:  int64(limit),
	}).Result()
	if err != nil {
		return nil, errors.NewRedisError(err)
	}

	records := make([]*model.ViolationRecord, 0, len(ids))
	for _, id := range ids {
		fields, err := r.rdb.HGetAll(ctx, violationKeyPrefix+id).Result()
		if err != nil {
			return nil, errors.NewRedisError(err)
		}
		if len(fields) == 0 {
			logger.Warn().Str("violation_id", id).Msg("Dangling violation index entry, skipping")
			continue
		}
		records = append(records, violationFromFields(fields))
	}

	return records, nil
}

// Delete 删除违规记录并清理两个索引
// 先读正文确定按 Key 索引，避免留下悬空索引项
func (r *violationRepository) Delete(ctx context.Context, id string) error {
	fields, err := r.rdb.HGetAll(ctx, violationKeyPrefix+id).Result()
	if err != nil {
		return errors.NewRedisError(err)
	}

	if apiKeyID := fields["apiKeyId"]; apiKeyID != "" {
		if err := r.rdb.ZRem(ctx, violationKeyIndexPrefix+apiKeyID, id).Err(); err != nil {
			return errors.NewRedisError(err)
		}
	}
	if err := r.rdb.ZRem(ctx, violationGlobalIndexKey, id).Err(); err != nil {
		return errors.NewRedisError(err)
	}
	if err := r.rdb.Del(ctx, violationKeyPrefix+id).Err(); err != nil {
		return errors.NewRedisError(err)
	}

	return nil
}

// ExpiredIDs 返回全局索引中早于 cutoff 的全部记录 ID
func (r *violationRepository) ExpiredIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := r.rdb.ZRangeByScore(ctx, violationGlobalIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, errors.NewRedisError(err)
	}

	return ids, nil
}

// indexKey 选择索引：apiKeyID 为空时使用全局索引
func (r *violationRepository) indexKey(apiKeyID string) string {
	if apiKeyID == "" {
		return violationGlobalIndexKey
	}
	return violationKeyIndexPrefix + apiKeyID
}

// scoreRange 将可选时间边界转换为 zset score 范围
func scoreRange(start, end *time.Time) (string, string) {
	minScore := "-inf"
	maxScore := "+inf"
	if start != nil {
		minScore = strconv.FormatInt(start.UnixMilli(), 10)
	}
	if end != nil {
		maxScore = strconv.FormatInt(end.UnixMilli(), 10)
	}
	return minScore, maxScore
}

// violationToFields 序列化为 Redis hash 字段
// matchedWords 与 details 以 JSON 字符串存储
func violationToFields(v *model.ViolationRecord) (map[string]interface{}, error) {
	matched, err := json.Marshal(v.MatchedWords)
	if err != nil {
		return nil, err
	}
	details, err := json.Marshal(v.Details)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":            v.ID,
		"apiKeyId":      v.APIKeyID,
		"apiKeyName":    v.APIKeyName,
		"matchedWords":  string(matched),
		"contentSample": v.ContentSample,
		"requestPath":   v.RequestPath,
		"clientIp":      v.ClientIP,
		"userAgent":     v.UserAgent,
		"requestId":     v.RequestID,
		"timestamp":     v.Timestamp.Format(time.RFC3339Nano),
		"details":       string(details),
	}, nil
}

// violationFromFields 从 Redis hash 字段反序列化
// matchedWords/details 解析失败时退回零值而不是让整页报错
func violationFromFields(fields map[string]string) *model.ViolationRecord {
	var matched []model.MatchedWord
	if err := json.Unmarshal([]byte(fields["matchedWords"]), &matched); err != nil {
		matched = []model.MatchedWord{}
	}

	var details map[string]interface{}
	if err := json.Unmarshal([]byte(fields["details"]), &details); err != nil {
		details = map[string]interface{}{}
	}

	timestamp, _ := time.Parse(time.RFC3339Nano, fields["timestamp"])

	return &model.ViolationRecord{
		ID:            fields["id"],
		APIKeyID:      fields["apiKeyId"],
		APIKeyName:    fields["apiKeyName"],
		MatchedWords:  matched,
		ContentSample: fields["contentSample"],
		RequestPath:   fields["requestPath"],
		ClientIP:      fields["clientIp"],
		UserAgent:     fields["userAgent"],
		RequestID:     fields["requestId"],
		Timestamp:     timestamp,
		Details:       details,
	}
}
