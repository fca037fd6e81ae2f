package handler

import (
	"net/http"

	"github.com/ding113/claude-content-guard/internal/config"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/gin-gonic/gin"
)

// ViolationHandler 违规日志管理处理器
type ViolationHandler struct {
	violations *service.ViolationService
	filterCfg  config.FilterConfig
}

// NewViolationHandler 创建 ViolationHandler
func NewViolationHandler(violations *service.ViolationService, filterCfg config.FilterConfig) *ViolationHandler {
	return &ViolationHandler{violations: violations, filterCfg: filterCfg}
}

// List 获取违规日志分页
// GET /api/violations?page=1&limit=50&startDate=...&endDate=...&apiKeyId=...
func (h *ViolationHandler) List(c *gin.Context) {
	page, err := h.violations.GetAll(c.Request.Context(), parseViolationQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get 获取单条违规日志
// GET /api/violations/:id
func (h *ViolationHandler) Get(c *gin.Context) {
	record, err := h.violations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete 删除单条违规日志
// DELETE /api/violations/:id
func (h *ViolationHandler) Delete(c *gin.Context) {
	if err := h.violations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// BatchDelete 批量删除违规日志
// POST /api/violations/batch-delete
func (h *ViolationHandler) BatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}
	if len(req.IDs) == 0 {
		respondError(c, errors.NewValidationError("violation id list must not be empty", errors.CodeEmptyBatch))
		return
	}

	if err := h.violations.BatchDelete(c.Request.Context(), req.IDs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(req.IDs)})
}

// cleanupRequest 清理请求体
type cleanupRequest struct {
	// RetentionDays 为 nil 时使用配置的默认保留天数
	RetentionDays *int `json:"retentionDays"`
}

// Cleanup 清理超出保留期的违规日志
// POST /api/violations/cleanup
func (h *ViolationHandler) Cleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, errors.NewInvalidRequest(err.Error()))
		return
	}

	retentionDays := h.filterCfg.RetentionDays
	if req.RetentionDays != nil {
		retentionDays = *req.RetentionDays
	}

	removed, err := h.violations.Cleanup(c.Request.Context(), retentionDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed, "retentionDays": retentionDays})
}

// Stats 违规统计
// GET /api/violations/stats
func (h *ViolationHandler) Stats(c *gin.Context) {
	stats, err := h.violations.Stats(c.Request.Context(), parseViolationQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
