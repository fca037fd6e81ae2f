package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ding113/claude-content-guard/internal/config"
	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/ding113/claude-content-guard/internal/pkg/utils"
	"github.com/ding113/claude-content-guard/internal/repository"
	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// HeaderAPIKeyID 中继转发的调用方 Key ID
	HeaderAPIKeyID = "X-Api-Key-Id"
	// HeaderRequestID 中继转发的请求 ID
	HeaderRequestID = "X-Request-Id"

	// recordTimeout 异步写违规日志的超时
	recordTimeout = 10 * time.Second
)

// ContentFilter 内容过滤中间件
// 命中敏感词时拒绝请求并异步记录违规日志；过滤子系统自身出错时放行
// （fail-open：审查层故障不能放大为主服务故障）
func ContentFilter(
	cfg config.FilterConfig,
	filter *service.ContentFilter,
	violations *service.ViolationService,
	keys repository.KeyRepository,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		// 只检查携带请求体的 POST/PUT 请求
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}
		if c.Request.Body == nil {
			c.Next()
			return
		}

		// 无法归因到调用方的请求不做拦截
		apiKeyID := c.GetHeader(HeaderAPIKeyID)
		if apiKeyID == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Content filter failed to read request body")
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		text := ExtractText(body)
		if strings.TrimSpace(text) == "" {
			c.Next()
			return
		}

		result, err := filter.Check(c.Request.Context(), text)
		if err != nil {
			// 显式 fail-open：检测失败按无违规处理，只记告警
			logger.Warn().Err(err).Msg("Content filter check failed, allowing request")
			c.Next()
			return
		}

		if !result.IsViolation {
			c.Next()
			return
		}

		apiKeyName := keys.ResolveName(c.Request.Context(), apiKeyID)
		requestID := utils.DefaultString(c.GetHeader(HeaderRequestID), utils.GenerateRequestID())
		matchedCategories := result.Categories()

		params := model.RecordViolationParams{
			APIKeyName:    apiKeyName,
			MatchedWords:  result.MatchedWords,
			ContentSample: text,
			RequestPath:   c.Request.URL.Path,
			ClientIP:      c.ClientIP(),
			UserAgent:     c.Request.UserAgent(),
			RequestID:     requestID,
			Details: map[string]interface{}{
				"method":       c.Request.Method,
				"model":        extractModel(body),
				"messageCount": countMessages(body),
			},
		}

		// 异步记录，不阻塞拒绝响应
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			violations.Record(ctx, apiKeyID, params)
		}()

		logger.Security().
			Str("api_key_id", apiKeyID).
			Str("api_key_name", apiKeyName).
			Int("matched_words", len(result.MatchedWords)).
			Strs("categories", matchedCategories).
			Msg("Content filter blocked request")

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"type":    "content_violation",
				"message": "Request content contains sensitive words and has been rejected",
			},
			"matchedCategories": matchedCategories,
			"timestamp":         time.Now().Format(time.RFC3339),
		})
	}
}

// extractModel 从请求体提取 model 字段
func extractModel(body []byte) string {
	var payload struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Model == "" {
		return "unknown"
	}
	return payload.Model
}

// countMessages 统计请求体中的消息条数
func countMessages(body []byte) int {
	var payload struct {
		Messages []interface{} `json:"messages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	return len(payload.Messages)
}
