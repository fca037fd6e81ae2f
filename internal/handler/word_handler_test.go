package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/ding113/claude-content-guard/internal/repository"
	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "json"})
	gin.SetMode(gin.TestMode)
}

// newWordTestRouter 构造敏感词管理 API 测试路由
func newWordTestRouter(t *testing.T) (*gin.Engine, *service.WordService) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	words := service.NewWordService(repository.NewSensitiveWordRepository(client), service.NewWordCache(time.Minute))
	handler := NewWordHandler(words, service.NewContentFilter(words))

	router := gin.New()
	group := router.Group("/api/sensitive-words")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/stats", handler.Stats)
		group.POST("/batch-delete", handler.BatchDelete)
		group.POST("/batch-import", handler.BatchImport)
		group.POST("/test", handler.Test)
		group.POST("/refresh-cache", handler.RefreshCache)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}

	return router, words
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWordHandlerCreateAndGet(t *testing.T) {
	router, _ := newWordTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/sensitive-words", `{"word": "badword", "category": "nsfw"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.SensitiveWord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "badword", created.Word)

	w = doJSON(router, http.MethodGet, "/api/sensitive-words/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/sensitive-words/missing-id", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWordHandlerCreateValidationError(t *testing.T) {
	router, _ := newWordTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/sensitive-words", `{"word": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/sensitive-words", `{"word": "x", "category": "bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWordHandlerListWithFilter(t *testing.T) {
	router, words := newWordTestRouter(t)
	ctx := context.Background()

	_, err := words.Create(ctx, model.CreateSensitiveWordParams{Word: "active"})
	require.NoError(t, err)
	disabled := false
	_, err = words.Create(ctx, model.CreateSensitiveWordParams{Word: "inactive", Enabled: &disabled})
	require.NoError(t, err)

	var resp struct {
		Words []*model.SensitiveWord `json:"words"`
		Total int                    `json:"total"`
	}

	w := doJSON(router, http.MethodGet, "/api/sensitive-words", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	w = doJSON(router, http.MethodGet, "/api/sensitive-words?onlyEnabled=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Words, 1)
	assert.Equal(t, "active", resp.Words[0].Word)
}

func TestWordHandlerUpdateAndDelete(t *testing.T) {
	router, words := newWordTestRouter(t)

	created, err := words.Create(context.Background(), model.CreateSensitiveWordParams{Word: "badword"})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPut, "/api/sensitive-words/"+created.ID, `{"enabled": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.SensitiveWord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.Enabled)

	w = doJSON(router, http.MethodDelete, "/api/sensitive-words/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/sensitive-words/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWordHandlerBatchImport(t *testing.T) {
	router, _ := newWordTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/sensitive-words/batch-import",
		`{"words": [{"word": "alpha"}, {"word": "  "}], "createdBy": "importer"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.BatchImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
}

func TestWordHandlerTestEndpoint(t *testing.T) {
	router, words := newWordTestRouter(t)

	_, err := words.Create(context.Background(), model.CreateSensitiveWordParams{
		Word:     "badword",
		Category: model.WordCategoryViolence,
	})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/api/sensitive-words/test", `{"text": "has badword inside"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.CheckResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsViolation)
	require.Len(t, result.MatchedWords, 1)
	assert.Equal(t, "badword", result.MatchedWords[0].Word)

	// 缺少 text 字段
	w = doJSON(router, http.MethodPost, "/api/sensitive-words/test", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWordHandlerStats(t *testing.T) {
	router, words := newWordTestRouter(t)

	_, err := words.Create(context.Background(), model.CreateSensitiveWordParams{Word: "a", Category: model.WordCategoryNSFW})
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/sensitive-words/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.WordStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByCategory["nsfw"])
}
