package service

import (
	"context"
	"sort"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/ding113/claude-content-guard/internal/pkg/utils"
	"github.com/ding113/claude-content-guard/internal/repository"
)

const (
	// contentSampleMaxLen 存储的内容样本上限（字符数）
	contentSampleMaxLen = 200

	// statsPageLimit 统计聚合单次加载的记录上限
	statsPageLimit = 10000

	// defaultPageLimit 默认分页大小
	defaultPageLimit = 50

	// topWordsLimit 统计中保留的高频词数量
	topWordsLimit = 10
)

// ViolationService 违规日志服务
type ViolationService struct {
	repo     repository.ViolationRepository
	notifier *Notifier
}

// NewViolationService 创建 ViolationService
func NewViolationService(repo repository.ViolationRepository, notifier *Notifier) *ViolationService {
	return &ViolationService{repo: repo, notifier: notifier}
}

// Record 记录一次违规
// 存储不可达时只记日志并返回 nil：漏掉一条审计不能阻塞已决定拒绝的请求路径
func (s *ViolationService) Record(ctx context.Context, apiKeyID string, params model.RecordViolationParams) *model.ViolationRecord {
	now := time.Now()

	record := &model.ViolationRecord{
		ID:            utils.GenerateUUID(),
		APIKeyID:      apiKeyID,
		APIKeyName:    utils.DefaultString(params.APIKeyName, "Unknown"),
		MatchedWords:  params.MatchedWords,
		ContentSample: sanitizeContent(params.ContentSample, params.MatchedWords),
		RequestPath:   utils.DefaultString(params.RequestPath, "Unknown"),
		ClientIP:      utils.DefaultString(params.ClientIP, "Unknown"),
		UserAgent:     utils.DefaultString(params.UserAgent, "Unknown"),
		RequestID:     utils.DefaultString(params.RequestID, "Unknown"),
		Timestamp:     now,
		Details:       params.Details,
	}
	if record.MatchedWords == nil {
		record.MatchedWords = []model.MatchedWord{}
	}
	if record.Details == nil {
		record.Details = map[string]interface{}{}
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		logger.Error().Err(err).Msg("Failed to record violation log")
		return nil
	}

	logger.Security().
		Str("api_key_name", record.APIKeyName).
		Int("matched_words", len(record.MatchedWords)).
		Msg("Violation recorded")

	if s.notifier != nil {
		s.notifier.NotifyAsync(record)
	}

	return record
}

// sanitizeContent 脱敏内容样本（上限 200 字符）
// 内容超长且已知首个命中位置时，以该位置为中心截取窗口，
// 窗口不从头开始时加省略号前缀，始终加省略号后缀
func sanitizeContent(content string, matched []model.MatchedWord) string {
	runes := []rune(content)
	if len(runes) <= contentSampleMaxLen {
		return content
	}

	if len(matched) > 0 && matched[0].Position >= 0 {
		half := contentSampleMaxLen / 2
		start := matched[0].Position - half
		if start < 0 {
			start = 0
		}
		if start > len(runes) {
			start = len(runes)
		}

		prefix := ""
		if start > 0 {
			prefix = "..."
		}

		available := contentSampleMaxLen - len(prefix) - 3
		end := start + available
		if end > len(runes) {
			end = len(runes)
		}

		return prefix + string(runes[start:end]) + "..."
	}

	return string(runes[:contentSampleMaxLen]) + "..."
}

// Get 获取单条违规记录
func (s *ViolationService) Get(ctx context.Context, id string) (*model.ViolationRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByAPIKey 获取指定 Key 的违规日志分页
func (s *ViolationService) GetByAPIKey(ctx context.Context, apiKeyID string, query model.ViolationQuery) (*model.ViolationPage, error) {
	query.APIKeyID = apiKeyID
	return s.listPage(ctx, query)
}

// GetAll 获取违规日志分页
// 指定 apiKeyId 时委托给按 Key 查询，两条路径对重叠范围返回相同记录
func (s *ViolationService) GetAll(ctx context.Context, query model.ViolationQuery) (*model.ViolationPage, error) {
	return s.listPage(ctx, query)
}

// listPage 统一的范围分页查询
func (s *ViolationService) listPage(ctx context.Context, query model.ViolationQuery) (*model.ViolationPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	total, err := s.repo.CountRange(ctx, query.APIKeyID, query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	result := &model.ViolationPage{
		Logs:  []*model.ViolationRecord{},
		Total: total,
		Page:  page,
		Limit: limit,
	}
	if total == 0 {
		return result, nil
	}

	offset := (page - 1) * limit
	logs, err := s.repo.ListRange(ctx, query.APIKeyID, query.StartDate, query.EndDate, offset, limit)
	if err != nil {
		return nil, err
	}

	result.Logs = logs
	return result, nil
}

// Delete 删除单条违规记录（正文 + 两个索引）
func (s *ViolationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info().Str("violation_id", id).Msg("Deleted violation log")
	return nil
}

// BatchDelete 批量删除违规记录
func (s *ViolationService) BatchDelete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
	}

	logger.Info().Int("count", len(ids)).Msg("Batch deleted violation logs")
	return nil
}

// Cleanup 清理超出保留期的违规记录，返回删除数量
// retentionDays <= 0 表示显式关闭清理
func (s *ViolationService) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		logger.Debug().Msg("Violation log cleanup disabled (retention <= 0)")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	ids, err := s.repo.ExpiredIDs(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		logger.Debug().Msg("No expired violation logs to clean up")
		return 0, nil
	}

	for _, id := range ids {
		if err := s.repo.Delete(ctx, id); err != nil {
			return 0, err
		}
	}

	logger.Info().Int("count", len(ids)).Msg("Cleaned up expired violation logs")
	return len(ids), nil
}

// Stats 违规统计
// 在一个大的有界分页（最多 10000 条）上聚合：
// 按分类、按调用方、按日（记录时间戳的日期部分）、高频命中词 Top 10
func (s *ViolationService) Stats(ctx context.Context, query model.ViolationQuery) (*model.ViolationStats, error) {
	query.Page = 1
	query.Limit = statsPageLimit

	page, err := s.listPage(ctx, query)
	if err != nil {
		return nil, err
	}

	stats := &model.ViolationStats{
		Total:      page.Total,
		ByCategory: make(map[string]int),
		ByAPIKey:   make(map[string]int),
		ByDay:      make(map[string]int),
	}

	wordCounts := make(map[string]int)
	for _, log := range page.Logs {
		for _, match := range log.MatchedWords {
			category := match.Category
			if category == "" {
				category = model.WordCategoryOther
			}
			stats.ByCategory[string(category)]++
			wordCounts[match.Word]++
		}

		stats.ByAPIKey[log.APIKeyName]++
		stats.ByDay[log.Timestamp.Format("2006-01-02")]++
	}

	stats.TopMatchedWords = topWords(wordCounts, topWordsLimit)

	return stats, nil
}

// topWords 按出现次数倒序取前 n 个词
func topWords(counts map[string]int, n int) []model.WordCount {
	words := make([]model.WordCount, 0, len(counts))
	for word, count := range counts {
		words = append(words, model.WordCount{Word: word, Count: count})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}
