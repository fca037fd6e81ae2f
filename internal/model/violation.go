package model

import "time"

// MatchedWord 单条命中结果
// Position 是第一次出现的字符偏移；同一个词在一次扫描内只记录首个位置
type MatchedWord struct {
	Word     string       `json:"word"`
	Category WordCategory `json:"category"`
	Position int          `json:"position"`
}

// CheckResult 内容检测结果
type CheckResult struct {
	IsViolation  bool          `json:"isViolation"`
	MatchedWords []MatchedWord `json:"matchedWords"`
}

// Categories 返回去重后的命中分类列表（保持首次出现顺序）
func (r *CheckResult) Categories() []string {
	seen := make(map[WordCategory]struct{}, len(r.MatchedWords))
	categories := make([]string, 0, len(r.MatchedWords))
	for _, m := range r.MatchedWords {
		if _, ok := seen[m.Category]; ok {
			continue
		}
		seen[m.Category] = struct{}{}
		categories = append(categories, string(m.Category))
	}
	return categories
}

// ViolationRecord 违规审计记录
// 存储在 Redis：hash violation_log:{id}，并写入两个按时间戳排序的索引
// （全局 zset violation_logs_global 与按 Key 的 zset violation_logs_by_key:{apiKeyId}）
type ViolationRecord struct {
	ID            string                 `json:"id"`
	APIKeyID      string                 `json:"apiKeyId"`
	APIKeyName    string                 `json:"apiKeyName"`
	MatchedWords  []MatchedWord          `json:"matchedWords"`
	ContentSample string                 `json:"contentSample"`
	RequestPath   string                 `json:"requestPath"`
	ClientIP      string                 `json:"clientIp"`
	UserAgent     string                 `json:"userAgent"`
	RequestID     string                 `json:"requestId"`
	Timestamp     time.Time              `json:"timestamp"`
	Details       map[string]interface{} `json:"details"`
}

// RecordViolationParams 记录违规参数
type RecordViolationParams struct {
	APIKeyName    string
	MatchedWords  []MatchedWord
	ContentSample string
	RequestPath   string
	ClientIP      string
	UserAgent     string
	RequestID     string
	Details       map[string]interface{}
}

// ViolationQuery 违规日志查询选项
// StartDate/EndDate 为 nil 时该侧时间范围开放
type ViolationQuery struct {
	Page      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
	APIKeyID  string
}

// ViolationPage 违规日志分页结果
type ViolationPage struct {
	Logs  []*ViolationRecord `json:"logs"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ViolationStats 违规统计
type ViolationStats struct {
	Total           int            `json:"total"`
	ByCategory      map[string]int `json:"byCategory"`
	ByAPIKey        map[string]int `json:"byApiKey"`
	ByDay           map[string]int `json:"byDay"`
	TopMatchedWords []WordCount    `json:"topMatchedWords"`
}

// WordCount 词频统计项
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
