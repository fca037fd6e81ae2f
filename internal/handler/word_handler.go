package handler

import (
	"net/http"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/gin-gonic/gin"
)

// WordHandler 敏感词管理处理器
type WordHandler struct {
	words  *service.WordService
	filter *service.ContentFilter
}

// NewWordHandler 创建 WordHandler
func NewWordHandler(words *service.WordService, filter *service.ContentFilter) *WordHandler {
	return &WordHandler{words: words, filter: filter}
}

// Create 创建敏感词
// POST /api/sensitive-words
func (h *WordHandler) Create(c *gin.Context) {
	var params model.CreateSensitiveWordParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}

	word, err := h.words.Create(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, word)
}

// List 获取敏感词列表
// GET /api/sensitive-words?onlyEnabled=true
func (h *WordHandler) List(c *gin.Context) {
	onlyEnabled := c.Query("onlyEnabled") == "true"

	words, err := h.words.List(c.Request.Context(), onlyEnabled)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"words": words,
		"total": len(words),
	})
}

// Get 获取单个敏感词
// GET /api/sensitive-words/:id
func (h *WordHandler) Get(c *gin.Context) {
	word, err := h.words.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, word)
}

// Update 更新敏感词
// PUT /api/sensitive-words/:id
func (h *WordHandler) Update(c *gin.Context) {
	var params model.UpdateSensitiveWordParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}

	word, err := h.words.Update(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, word)
}

// Delete 删除敏感词
// DELETE /api/sensitive-words/:id
func (h *WordHandler) Delete(c *gin.Context) {
	if err := h.words.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// batchDeleteRequest 批量删除请求体
type batchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BatchDelete 批量删除敏感词
// POST /api/sensitive-words/batch-delete
func (h *WordHandler) BatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.words.BatchDelete(c.Request.Context(), req.IDs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(req.IDs)})
}

// batchImportRequest 批量导入请求体
type batchImportRequest struct {
	Words     []model.CreateSensitiveWordParams `json:"words" binding:"required"`
	CreatedBy string                            `json:"createdBy"`
}

// BatchImport 批量导入敏感词
// POST /api/sensitive-words/batch-import
func (h *WordHandler) BatchImport(c *gin.Context) {
	var req batchImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = "admin"
	}

	result, err := h.words.BatchImport(c.Request.Context(), req.Words, createdBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// testRequest 检测测试请求体
type testRequest struct {
	Text string `json:"text" binding:"required"`
}

// Test 对给定文本执行一次检测
// POST /api/sensitive-words/test
func (h *WordHandler) Test(c *gin.Context) {
	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}

	result, err := h.filter.Check(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshCache 手动刷新敏感词缓存
// POST /api/sensitive-words/refresh-cache
func (h *WordHandler) RefreshCache(c *gin.Context) {
	h.words.RefreshCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats 敏感词统计
// GET /api/sensitive-words/stats
func (h *WordHandler) Stats(c *gin.Context) {
	stats, err := h.words.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
