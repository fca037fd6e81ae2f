package service

import (
	"context"
	"strings"

	"github.com/ding113/claude-content-guard/internal/model"
)

// ContentFilter 内容过滤器
// 纯读路径：从缓存取启用词表，对输入文本做全量线性扫描
// 不做任何存储写入，可安全地放在请求热路径上
type ContentFilter struct {
	words *WordService
}

// NewContentFilter 创建 ContentFilter
func NewContentFilter(words *WordService) *ContentFilter {
	return &ContentFilter{words: words}
}

// Check 检测文本是否包含敏感词
// 收集全部命中而非首个命中，审计需要每条命中的分类
// 存储不可达时返回错误，由调用方显式决定是否 fail-open
func (f *ContentFilter) Check(ctx context.Context, text string) (*model.CheckResult, error) {
	result := &model.CheckResult{MatchedWords: []model.MatchedWord{}}

	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	words, err := f.words.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return result, nil
	}

	lowerText := strings.ToLower(text)

	for _, word := range words {
		matched, position := MatchWord(text, lowerText, word)
		if !matched {
			continue
		}
		result.MatchedWords = append(result.MatchedWords, model.MatchedWord{
			Word:     word.Word,
			Category: word.Category,
			Position: position,
		})
	}

	result.IsViolation = len(result.MatchedWords) > 0
	return result, nil
}
