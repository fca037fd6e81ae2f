// Package handler 提供管理 API 的 Gin 处理器
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// respondError 统一错误响应
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}

	c.JSON(http.StatusInternalServerError, errors.NewInternalError(err.Error()).ToResponse())
}

// parseViolationQuery 解析违规日志查询参数
func parseViolationQuery(c *gin.Context) model.ViolationQuery {
	query := model.ViolationQuery{
		Page:     parseIntQuery(c, "page", 1),
		Limit:    parseIntQuery(c, "limit", 50),
		APIKeyID: c.Query("apiKeyId"),
	}

	if t, ok := parseTimeQuery(c, "startDate"); ok {
		query.StartDate = &t
	}
	if t, ok := parseTimeQuery(c, "endDate"); ok {
		query.EndDate = &t
	}

	return query
}

// parseIntQuery 解析整数查询参数
func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// parseTimeQuery 解析时间查询参数，接受 RFC3339 或 2006-01-02
func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
