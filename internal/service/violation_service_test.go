package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/ding113/claude-content-guard/internal/pkg/utils"
	"github.com/ding113/claude-content-guard/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestViolationService 基于 miniredis 构造 ViolationService
func newTestViolationService(t *testing.T) (*ViolationService, repository.ViolationRepository) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewViolationRepository(client)
	return NewViolationService(repo, nil), repo
}

func recordParams(word string) model.RecordViolationParams {
	return model.RecordViolationParams{
		APIKeyName: "Test Key",
		MatchedWords: []model.MatchedWord{
			{Word: word, Category: model.WordCategoryNSFW, Position: 5},
		},
		ContentSample: "text " + word + " text",
		RequestPath:   "/v1/messages",
		ClientIP:      "127.0.0.1",
		UserAgent:     "test-agent",
		RequestID:     "req_test",
	}
}

func TestRecordThenGetByAPIKey(t *testing.T) {
	violations, _ := newTestViolationService(t)
	ctx := context.Background()

	record := violations.Record(ctx, "key-1", recordParams("badword"))
	require.NotNil(t, record)
	assert.NotEmpty(t, record.ID)
	assert.LessOrEqual(t, len([]rune(record.ContentSample)), 200)

	page, err := violations.GetByAPIKey(ctx, "key-1", model.ViolationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Logs, 1)

	got := page.Logs[0]
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.MatchedWords, got.MatchedWords)
	assert.Equal(t, record.ContentSample, got.ContentSample)
	assert.Equal(t, "Test Key", got.APIKeyName)
}

func TestRecordDefaultsUnknownFields(t *testing.T) {
	violations, _ := newTestViolationService(t)

	record := violations.Record(context.Background(), "key-1", model.RecordViolationParams{
		ContentSample: "some text",
	})
	require.NotNil(t, record)
	assert.Equal(t, "Unknown", record.APIKeyName)
	assert.Equal(t, "Unknown", record.RequestPath)
	assert.Equal(t, "Unknown", record.ClientIP)
	assert.Equal(t, "Unknown", record.UserAgent)
	assert.Equal(t, "Unknown", record.RequestID)
	assert.NotNil(t, record.MatchedWords)
	assert.NotNil(t, record.Details)
}

func TestRecordStoreUnavailableReturnsNil(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	violations := NewViolationService(repository.NewViolationRepository(client), nil)

	srv.Close()

	record := violations.Record(context.Background(), "key-1", recordParams("badword"))
	assert.Nil(t, record)
}

func TestSanitizeContentShortVerbatim(t *testing.T) {
	content := "short content with badword"
	sample := sanitizeContent(content, []model.MatchedWord{{Word: "badword", Position: 19}})
	assert.Equal(t, content, sample)
}

func TestSanitizeContentWindowAroundMatch(t *testing.T) {
	// 500 字符，命中位置在 400：窗口不从头开始，前后都有省略号
	content := strings.Repeat("a", 400) + "badword" + strings.Repeat("b", 93)
	sample := sanitizeContent(content, []model.MatchedWord{{Word: "badword", Position: 400}})

	assert.LessOrEqual(t, len([]rune(sample)), 200)
	assert.True(t, strings.HasPrefix(sample, "..."))
	assert.Contains(t, sample, "badword")
}

func TestSanitizeContentNoPositionTruncatesHead(t *testing.T) {
	content := strings.Repeat("x", 500)
	sample := sanitizeContent(content, nil)

	assert.Equal(t, strings.Repeat("x", 200)+"...", sample)
}

func TestSanitizeContentMatchNearStart(t *testing.T) {
	content := "badword " + strings.Repeat("y", 500)
	sample := sanitizeContent(content, []model.MatchedWord{{Word: "badword", Position: 0}})

	// 窗口从头开始时没有省略号前缀
	assert.True(t, strings.HasPrefix(sample, "badword"))
	assert.True(t, strings.HasSuffix(sample, "..."))
	assert.LessOrEqual(t, len([]rune(sample)), 200)
}

func TestViolationDeleteRemovesFromBothIndices(t *testing.T) {
	violations, _ := newTestViolationService(t)
	ctx := context.Background()

	record := violations.Record(ctx, "key-1", recordParams("badword"))
	require.NotNil(t, record)

	require.NoError(t, violations.Delete(ctx, record.ID))

	_, err := violations.Get(ctx, record.ID)
	assert.True(t, errors.IsNotFound(err))

	byKey, err := violations.GetByAPIKey(ctx, "key-1", model.ViolationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, byKey.Total)

	global, err := violations.GetAll(ctx, model.ViolationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, global.Total)
}

func TestViolationPagination(t *testing.T) {
	violations, repo := newTestViolationService(t)
	ctx := context.Background()

	// 25 条记录，时间戳严格递增
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 25; i++ {
		record := &model.ViolationRecord{
			ID:           fmt.Sprintf("v-%02d", i),
			APIKeyID:     "key-1",
			APIKeyName:   "Test Key",
			MatchedWords: []model.MatchedWord{},
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			Details:      map[string]interface{}{},
		}
		require.NoError(t, repo.Insert(ctx, record))
	}

	page, err := violations.GetAll(ctx, model.ViolationQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Logs, 10)

	// 倒序：第二页是第 15 到第 6 条
	assert.Equal(t, "v-15", page.Logs[0].ID)
	assert.Equal(t, "v-06", page.Logs[9].ID)
}

func TestViolationTimeRangeFilter(t *testing.T) {
	violations, repo := newTestViolationService(t)
	ctx := context.Background()

	base := time.Now().Add(-3 * time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, &model.ViolationRecord{
			ID:           utils.GenerateUUID(),
			APIKeyID:     "key-1",
			MatchedWords: []model.MatchedWord{},
			Timestamp:    base.Add(time.Duration(i) * time.Hour),
			Details:      map[string]interface{}{},
		}))
	}

	start := base.Add(30 * time.Minute)
	end := base.Add(150 * time.Minute)
	page, err := violations.GetAll(ctx, model.ViolationQuery{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestViolationGetAllMatchesGetByAPIKey(t *testing.T) {
	violations, _ := newTestViolationService(t)
	ctx := context.Background()

	violations.Record(ctx, "key-1", recordParams("alpha"))
	violations.Record(ctx, "key-2", recordParams("beta"))

	byKey, err := violations.GetByAPIKey(ctx, "key-1", model.ViolationQuery{})
	require.NoError(t, err)
	filtered, err := violations.GetAll(ctx, model.ViolationQuery{APIKeyID: "key-1"})
	require.NoError(t, err)

	assert.Equal(t, byKey.Total, filtered.Total)
	require.Len(t, filtered.Logs, 1)
	assert.Equal(t, byKey.Logs[0].ID, filtered.Logs[0].ID)
}

func TestViolationCleanup(t *testing.T) {
	violations, repo := newTestViolationService(t)
	ctx := context.Background()

	old := &model.ViolationRecord{
		ID:           "v-old",
		APIKeyID:     "key-1",
		MatchedWords: []model.MatchedWord{},
		Timestamp:    time.Now().AddDate(0, 0, -40),
		Details:      map[string]interface{}{},
	}
	recent := &model.ViolationRecord{
		ID:           "v-recent",
		APIKeyID:     "key-1",
		MatchedWords: []model.MatchedWord{},
		Timestamp:    time.Now().AddDate(0, 0, -5),
		Details:      map[string]interface{}{},
	}
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, recent))

	removed, err := violations.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = violations.Get(ctx, "v-old")
	assert.True(t, errors.IsNotFound(err))

	_, err = violations.Get(ctx, "v-recent")
	assert.NoError(t, err)
}

func TestViolationCleanupDisabled(t *testing.T) {
	violations, repo := newTestViolationService(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &model.ViolationRecord{
		ID:           "v-old",
		APIKeyID:     "key-1",
		MatchedWords: []model.MatchedWord{},
		Timestamp:    time.Now().AddDate(0, 0, -400),
		Details:      map[string]interface{}{},
	}))

	for _, days := range []int{0, -1} {
		removed, err := violations.Cleanup(ctx, days)
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	}

	_, err := violations.Get(ctx, "v-old")
	assert.NoError(t, err)
}

func TestViolationStats(t *testing.T) {
	violations, _ := newTestViolationService(t)
	ctx := context.Background()

	violations.Record(ctx, "key-1", model.RecordViolationParams{
		APIKeyName: "Key One",
		MatchedWords: []model.MatchedWord{
			{Word: "alpha", Category: model.WordCategoryNSFW, Position: 0},
			{Word: "beta", Category: model.WordCategoryViolence, Position: 6},
		},
		ContentSample: "alpha beta",
	})
	violations.Record(ctx, "key-2", model.RecordViolationParams{
		APIKeyName: "Key Two",
		MatchedWords: []model.MatchedWord{
			{Word: "alpha", Category: model.WordCategoryNSFW, Position: 0},
		},
		ContentSample: "alpha",
	})
	violations.Record(ctx, "key-2", model.RecordViolationParams{
		APIKeyName: "Key Two",
		MatchedWords: []model.MatchedWord{
			{Word: "gamma", Position: 0},
		},
		ContentSample: "gamma",
	})

	stats, err := violations.Stats(ctx, model.ViolationQuery{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByCategory["nsfw"])
	assert.Equal(t, 1, stats.ByCategory["violence"])
	// 空分类归入 other
	assert.Equal(t, 1, stats.ByCategory["other"])
	assert.Equal(t, 1, stats.ByAPIKey["Key One"])
	assert.Equal(t, 2, stats.ByAPIKey["Key Two"])
	assert.Equal(t, 3, stats.ByDay[time.Now().Format("2006-01-02")])

	require.NotEmpty(t, stats.TopMatchedWords)
	assert.Equal(t, "alpha", stats.TopMatchedWords[0].Word)
	assert.Equal(t, 2, stats.TopMatchedWords[0].Count)
}

func TestTopWordsOrderAndLimit(t *testing.T) {
	counts := map[string]int{}
	for i := 0; i < 15; i++ {
		counts[fmt.Sprintf("word%02d", i)] = i + 1
	}

	words := topWords(counts, 10)
	require.Len(t, words, 10)
	assert.Equal(t, "word14", words[0].Word)
	assert.Equal(t, 15, words[0].Count)
	for i := 1; i < len(words); i++ {
		assert.GreaterOrEqual(t, words[i-1].Count, words[i].Count)
	}
}
