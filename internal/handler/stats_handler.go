package handler

import (
	"net/http"

	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/gin-gonic/gin"
)

// StatsHandler 仪表盘统计处理器
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview 仪表盘总览
// GET /api/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.stats.GetOverview(c.Request.Context(), parseViolationQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
