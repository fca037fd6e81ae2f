package service

import (
	"context"
	"strings"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/ding113/claude-content-guard/internal/pkg/utils"
	"github.com/ding113/claude-content-guard/internal/repository"
)

// WordService 敏感词管理服务
// 所有写操作都会主动失效列表缓存
type WordService struct {
	repo  repository.SensitiveWordRepository
	cache *WordCache
}

// NewWordService 创建 WordService
func NewWordService(repo repository.SensitiveWordRepository, cache *WordCache) *WordService {
	return &WordService{repo: repo, cache: cache}
}

// Create 创建敏感词
func (s *WordService) Create(ctx context.Context, params model.CreateSensitiveWordParams) (*model.SensitiveWord, error) {
	word := strings.TrimSpace(params.Word)
	if word == "" {
		return nil, errors.NewValidationError("word must not be empty", errors.CodeEmptyWord)
	}

	category := params.Category
	if category == "" {
		category = model.WordCategoryOther
	}
	if !category.IsValid() {
		return nil, errors.NewValidationError("invalid category: "+string(category), errors.CodeInvalidEnum)
	}

	matchType := params.MatchType
	if matchType == "" {
		matchType = model.MatchTypeExact
	}
	if !matchType.IsValid() {
		return nil, errors.NewValidationError("invalid match type: "+string(matchType), errors.CodeInvalidEnum)
	}

	enabled := true
	if params.Enabled != nil {
		enabled = *params.Enabled
	}

	now := time.Now()
	record := &model.SensitiveWord{
		ID:        utils.GenerateUUID(),
		Word:      word,
		Category:  category,
		MatchType: matchType,
		Enabled:   enabled,
		CreatedBy: utils.DefaultString(params.CreatedBy, "admin"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.cache.Invalidate()

	logger.Info().
		Str("word_id", record.ID).
		Str("category", string(record.Category)).
		Msg("Created sensitive word")

	return record, nil
}

// Update 更新敏感词；nil 字段保持原值
// word/matchType 组合在每次更新时整体重新校验
func (s *WordService) Update(ctx context.Context, id string, params model.UpdateSensitiveWordParams) (*model.SensitiveWord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Word != nil {
		record.Word = strings.TrimSpace(*params.Word)
	}
	if params.Category != nil {
		record.Category = *params.Category
	}
	if params.MatchType != nil {
		record.MatchType = *params.MatchType
	}
	if params.Enabled != nil {
		record.Enabled = *params.Enabled
	}

	if record.Word == "" {
		return nil, errors.NewValidationError("word must not be empty", errors.CodeEmptyWord)
	}
	if !record.Category.IsValid() {
		return nil, errors.NewValidationError("invalid category: "+string(record.Category), errors.CodeInvalidEnum)
	}
	if !record.MatchType.IsValid() {
		return nil, errors.NewValidationError("invalid match type: "+string(record.MatchType), errors.CodeInvalidEnum)
	}

	record.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.cache.Invalidate()

	logger.Info().Str("word_id", id).Msg("Updated sensitive word")

	return record, nil
}

// Get 获取单个敏感词
func (s *WordService) Get(ctx context.Context, id string) (*model.SensitiveWord, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete 删除敏感词；缺失 ID 为幂等空操作
func (s *WordService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()

	logger.Info().Str("word_id", id).Msg("Deleted sensitive word")
	return nil
}

// BatchDelete 批量删除敏感词
func (s *WordService) BatchDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return errors.NewValidationError("word id list must not be empty", errors.CodeEmptyBatch)
	}

	for _, id := range ids {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
	}

	s.cache.Invalidate()

	logger.Info().Int("count", len(ids)).Msg("Batch deleted sensitive words")
	return nil
}

// List 获取敏感词列表（带缓存），按创建时间倒序
// onlyEnabled 过滤作用在缓存值之上，缓存槽位始终只存完整列表
func (s *WordService) List(ctx context.Context, onlyEnabled bool) ([]*model.SensitiveWord, error) {
	words, ok := s.cache.Get()
	if !ok {
		loaded, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(loaded)
		words = loaded

		logger.Debug().Int("count", len(words)).Msg("Loaded sensitive words from Redis")
	}

	if !onlyEnabled {
		return words, nil
	}

	enabled := make([]*model.SensitiveWord, 0, len(words))
	for _, w := range words {
		if w.Enabled {
			enabled = append(enabled, w)
		}
	}
	return enabled, nil
}

// RefreshCache 手动失效缓存
func (s *WordService) RefreshCache() {
	s.cache.Invalidate()
	logger.Info().Msg("Sensitive words cache cleared")
}

// BatchImport 批量导入敏感词
// 逐条独立校验；失败项单独记录，成功项不回滚
func (s *WordService) BatchImport(ctx context.Context, words []model.CreateSensitiveWordParams, createdBy string) (*model.BatchImportResult, error) {
	if len(words) == 0 {
		return nil, errors.NewValidationError("word list must not be empty", errors.CodeEmptyBatch)
	}

	result := &model.BatchImportResult{
		Total:  len(words),
		Errors: []model.BatchImportItem{},
	}

	for _, params := range words {
		params.CreatedBy = createdBy
		if _, err := s.Create(ctx, params); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, model.BatchImportItem{
				Word:  params.Word,
				Error: err.Error(),
			})
			continue
		}
		result.Success++
	}

	logger.Info().
		Int("success", result.Success).
		Int("failed", result.Failed).
		Msg("Batch import completed")

	return result, nil
}

// Stats 敏感词统计
func (s *WordService) Stats(ctx context.Context) (*model.WordStats, error) {
	words, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}

	stats := &model.WordStats{
		Total:       len(words),
		ByCategory:  make(map[string]int),
		ByMatchType: make(map[string]int),
	}

	for _, w := range words {
		if w.Enabled {
			stats.Enabled++
		} else {
			stats.Disabled++
		}
		stats.ByCategory[string(w.Category)]++
		stats.ByMatchType[string(w.MatchType)]++
	}

	return stats, nil
}
