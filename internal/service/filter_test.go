package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWordService 基于 miniredis 构造 WordService
func newTestWordService(t *testing.T) (*WordService, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewSensitiveWordRepository(client)
	return NewWordService(repo, NewWordCache(time.Minute)), srv
}

func boolPtr(b bool) *bool { return &b }

func TestCheckMatchesEnabledWord(t *testing.T) {
	words, _ := newTestWordService(t)
	filter := NewContentFilter(words)
	ctx := context.Background()

	_, err := words.Create(ctx, model.CreateSensitiveWordParams{
		Word:     "badword",
		Category: model.WordCategoryViolence,
	})
	require.NoError(t, err)

	result, err := filter.Check(ctx, "text with BADWORD inside")
	require.NoError(t, err)
	assert.True(t, result.IsViolation)
	require.Len(t, result.MatchedWords, 1)
	assert.Equal(t, "badword", result.MatchedWords[0].Word)
	assert.Equal(t, model.WordCategoryViolence, result.MatchedWords[0].Category)
	assert.Equal(t, 10, result.MatchedWords[0].Position)
}

func TestCheckIgnoresDisabledWord(t *testing.T) {
	words, _ := newTestWordService(t)
	filter := NewContentFilter(words)
	ctx := context.Background()

	_, err := words.Create(ctx, model.CreateSensitiveWordParams{
		Word:    "badword",
		Enabled: boolPtr(false),
	})
	require.NoError(t, err)

	result, err := filter.Check(ctx, "badword badword badword")
	require.NoError(t, err)
	assert.False(t, result.IsViolation)
	assert.Empty(t, result.MatchedWords)
}

func TestCheckEmptyTextSkipsStore(t *testing.T) {
	words, srv := newTestWordService(t)
	filter := NewContentFilter(words)

	// 存储关闭也不报错：空文本不触发任何读取
	srv.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		result, err := filter.Check(context.Background(), text)
		require.NoError(t, err)
		assert.False(t, result.IsViolation)
	}
}

func TestCheckCollectsAllMatches(t *testing.T) {
	words, _ := newTestWordService(t)
	filter := NewContentFilter(words)
	ctx := context.Background()

	for _, params := range []model.CreateSensitiveWordParams{
		{Word: "alpha", Category: model.WordCategoryNSFW},
		{Word: "beta", Category: model.WordCategoryPolitics},
		{Word: "missing", Category: model.WordCategoryOther},
	} {
		_, err := words.Create(ctx, params)
		require.NoError(t, err)
	}

	result, err := filter.Check(ctx, "alpha then beta")
	require.NoError(t, err)
	assert.True(t, result.IsViolation)
	assert.Len(t, result.MatchedWords, 2)

	categories := result.Categories()
	assert.ElementsMatch(t, []string{"nsfw", "politics"}, categories)
}

func TestCheckInvalidRegexDoesNotAbortScan(t *testing.T) {
	words, _ := newTestWordService(t)
	filter := NewContentFilter(words)
	ctx := context.Background()

	_, err := words.Create(ctx, model.CreateSensitiveWordParams{
		Word:      "([broken",
		MatchType: model.MatchTypeRegex,
	})
	require.NoError(t, err)
	_, err = words.Create(ctx, model.CreateSensitiveWordParams{
		Word: "badword",
	})
	require.NoError(t, err)

	result, err := filter.Check(ctx, "badword present")
	require.NoError(t, err)
	assert.True(t, result.IsViolation)
	require.Len(t, result.MatchedWords, 1)
	assert.Equal(t, "badword", result.MatchedWords[0].Word)
}

func TestCheckReflectsUpdateAfterCacheInvalidation(t *testing.T) {
	words, _ := newTestWordService(t)
	filter := NewContentFilter(words)
	ctx := context.Background()

	created, err := words.Create(ctx, model.CreateSensitiveWordParams{Word: "oldword"})
	require.NoError(t, err)

	// 填充缓存
	result, err := filter.Check(ctx, "oldword")
	require.NoError(t, err)
	assert.True(t, result.IsViolation)

	// 更新会主动失效缓存，下一次检测立即反映新词
	newWord := "newword"
	_, err = words.Update(ctx, created.ID, model.UpdateSensitiveWordParams{Word: &newWord})
	require.NoError(t, err)

	result, err = filter.Check(ctx, "oldword")
	require.NoError(t, err)
	assert.False(t, result.IsViolation)

	result, err = filter.Check(ctx, "newword")
	require.NoError(t, err)
	assert.True(t, result.IsViolation)
}

func TestCheckStoreUnavailableReturnsError(t *testing.T) {
	words, srv := newTestWordService(t)
	filter := NewContentFilter(words)
	ctx := context.Background()

	_, err := words.Create(ctx, model.CreateSensitiveWordParams{Word: "badword"})
	require.NoError(t, err)

	// 缓存尚未填充且存储不可达：错误上抛，由调用方决定 fail-open
	words.RefreshCache()
	srv.Close()

	_, err = filter.Check(ctx, "badword")
	require.Error(t, err)
}
