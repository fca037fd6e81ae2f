package service

import (
	"context"

	"github.com/ding113/claude-content-guard/internal/model"
)

// StatsService 仪表盘统计聚合
// 纯派生数据：组合敏感词统计与违规统计，自身无状态
type StatsService struct {
	words      *WordService
	violations *ViolationService
}

// NewStatsService 创建 StatsService
func NewStatsService(words *WordService, violations *ViolationService) *StatsService {
	return &StatsService{words: words, violations: violations}
}

// Overview 仪表盘总览
type Overview struct {
	Words      *model.WordStats      `json:"words"`
	Violations *model.ViolationStats `json:"violations"`
}

// GetOverview 获取仪表盘总览
func (s *StatsService) GetOverview(ctx context.Context, query model.ViolationQuery) (*Overview, error) {
	wordStats, err := s.words.Stats(ctx)
	if err != nil {
		return nil, err
	}

	violationStats, err := s.violations.Stats(ctx, query)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Words:      wordStats,
		Violations: violationStats,
	}, nil
}
