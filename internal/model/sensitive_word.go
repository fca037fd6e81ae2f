package model

import "time"

// SensitiveWord 敏感词记录
// 存储在 Redis：hash sensitive_word:{id} + 索引集合 sensitive_words_index
type SensitiveWord struct {
	ID        string       `json:"id"`
	Word      string       `json:"word"`
	Category  WordCategory `json:"category"`
	MatchType MatchType    `json:"matchType"`
	Enabled   bool         `json:"enabled"`
	CreatedBy string       `json:"createdBy"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsActive 检查敏感词是否处于活跃状态
func (s *SensitiveWord) IsActive() bool {
	return s.Enabled
}

// CreateSensitiveWordParams 创建敏感词参数
type CreateSensitiveWordParams struct {
	Word      string       `json:"word" binding:"required"`
	Category  WordCategory `json:"category"`
	MatchType MatchType    `json:"matchType"`
	Enabled   *bool        `json:"enabled"`
	CreatedBy string       `json:"createdBy"`
}

// UpdateSensitiveWordParams 更新敏感词参数（nil 字段保持原值）
type UpdateSensitiveWordParams struct {
	Word      *string       `json:"word"`
	Category  *WordCategory `json:"category"`
	MatchType *MatchType    `json:"matchType"`
	Enabled   *bool         `json:"enabled"`
}

// BatchImportResult 批量导入结果
type BatchImportResult struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []BatchImportItem `json:"errors"`
}

// BatchImportItem 批量导入失败项
type BatchImportItem struct {
	Word  string `json:"word"`
	Error string `json:"error"`
}

// WordStats 敏感词统计
type WordStats struct {
	Total       int            `json:"total"`
	Enabled     int            `json:"enabled"`
	Disabled    int            `json:"disabled"`
	ByCategory  map[string]int `json:"byCategory"`
	ByMatchType map[string]int `json:"byMatchType"`
}
