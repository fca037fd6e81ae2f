// Package scheduler 提供后台定时任务
package scheduler

import (
	"context"
	"time"

	"github.com/ding113/claude-content-guard/internal/config"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
	"github.com/ding113/claude-content-guard/internal/service"
	"github.com/robfig/cron/v3"
)

// cleanupTimeout 单次清理任务的超时
const cleanupTimeout = 5 * time.Minute

// CleanupScheduler 违规日志保留期清理调度器
type CleanupScheduler struct {
	cron       *cron.Cron
	violations *service.ViolationService
	cfg        config.FilterConfig
}

// NewCleanupScheduler 创建清理调度器
func NewCleanupScheduler(violations *service.ViolationService, cfg config.FilterConfig) *CleanupScheduler {
	return &CleanupScheduler{
		cron:       cron.New(),
		violations: violations,
		cfg:        cfg,
	}
}

// Start 启动调度器
// retention_days <= 0 时不注册任务（清理被显式关闭）
func (s *CleanupScheduler) Start() error {
	if s.cfg.RetentionDays <= 0 {
		logger.Info().Msg("Violation log cleanup scheduler disabled (retention <= 0)")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.CleanupCron, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()

	logger.Info().
		Str("schedule", s.cfg.CleanupCron).
		Int("retention_days", s.cfg.RetentionDays).
		Msg("Violation log cleanup scheduler started")

	return nil
}

// Stop 停止调度器，等待运行中的任务结束
func (s *CleanupScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Violation log cleanup scheduler stopped")
}

// run 执行一次清理
func (s *CleanupScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	removed, err := s.violations.Cleanup(ctx, s.cfg.RetentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("Scheduled violation log cleanup failed")
		return
	}

	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("Scheduled violation log cleanup completed")
	}
}
