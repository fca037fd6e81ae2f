package model

// WordCategory 敏感词分类
type WordCategory string

const (
	WordCategoryNSFW     WordCategory = "nsfw"
	WordCategoryViolence WordCategory = "violence"
	WordCategoryPolitics WordCategory = "politics"
	WordCategoryOther    WordCategory = "other"
)

// IsValid 检查分类是否合法
func (c WordCategory) IsValid() bool {
	switch c {
	case WordCategoryNSFW, WordCategoryViolence, WordCategoryPolitics, WordCategoryOther:
		return true
	}
	return false
}

// MatchType 敏感词匹配类型
type MatchType string

const (
	// MatchTypeExact 精确匹配：小写化后做子串查找
	MatchTypeExact MatchType = "exact"
	// MatchTypeFuzzy 模糊匹配：允许字符之间穿插空白/符号
	MatchTypeFuzzy MatchType = "fuzzy"
	// MatchTypeRegex 正则匹配：word 字段本身是正则表达式
	MatchTypeRegex MatchType = "regex"
)

// IsValid 检查匹配类型是否合法
func (m MatchType) IsValid() bool {
	switch m {
	case MatchTypeExact, MatchTypeFuzzy, MatchTypeRegex:
		return true
	}
	return false
}
