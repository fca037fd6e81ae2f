package service

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
)

// regexCache 已编译正则的缓存，按 匹配类型+词 键控
// 词表由管理操作维护，规模有界；条目随规则删除而失效无妨
var regexCache sync.Map

// MatchWord 按记录的匹配策略检测文本
// 返回是否命中与首次命中的字符（rune）偏移，未命中时偏移为 -1
// 所有策略均不区分大小写
func MatchWord(text, lowerText string, word *model.SensitiveWord) (bool, int) {
	switch word.MatchType {
	case model.MatchTypeExact:
		idx := strings.Index(lowerText, strings.ToLower(word.Word))
		if idx < 0 {
			return false, -1
		}
		return true, utf8.RuneCountInString(lowerText[:idx])

	case model.MatchTypeFuzzy:
		re, err := compilePattern("fuzzy:"+word.Word, func() (*regexp.Regexp, error) {
			return regexp.Compile("(?i)" + fuzzyPattern(word.Word))
		})
		if err != nil {
			// fuzzyPattern 对词做了逐字符转义，编译失败属于异常情况
			logger.Warn().Str("word", word.Word).Err(err).Msg("Failed to compile fuzzy pattern")
			return false, -1
		}
		return findPosition(re, text)

	case model.MatchTypeRegex:
		re, err := compilePattern("regex:"+word.Word, func() (*regexp.Regexp, error) {
			return regexp.Compile("(?i)" + word.Word)
		})
		if err != nil {
			// 单条坏规则只影响自身，不中断整个词表扫描
			logger.Warn().Str("word", word.Word).Err(err).Msg("Invalid regex pattern for sensitive word")
			return false, -1
		}
		return findPosition(re, text)

	default:
		logger.Warn().Str("match_type", string(word.MatchType)).Msg("Unknown match type")
		return false, -1
	}
}

// fuzzyPattern 构造容忍混淆的模式：词的每个字符之间允许任意空白/符号
// 捕获 "b a d w o r d"、"b.a.d.w.o.r.d" 这类写法
func fuzzyPattern(word string) string {
	runes := []rune(word)
	parts := make([]string, 0, len(runes))
	for _, r := range runes {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return strings.Join(parts, `[\s\W]*`)
}

// compilePattern 带缓存的正则编译
func compilePattern(key string, compile func() (*regexp.Regexp, error)) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(key); ok {
		if re, ok := cached.(*regexp.Regexp); ok {
			return re, nil
		}
		// 缓存了编译失败标记
		return nil, cached.(error)
	}

	re, err := compile()
	if err != nil {
		regexCache.Store(key, err)
		return nil, err
	}
	regexCache.Store(key, re)
	return re, nil
}

// findPosition 在原始文本中查找并换算为字符偏移
func findPosition(re *regexp.Regexp, text string) (bool, int) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return false, -1
	}
	return true, utf8.RuneCountInString(text[:loc[0]])
}
