package service

import (
	"context"
	"time"

	"github.com/ding113/claude-content-guard/internal/config"
	"github.com/ding113/claude-content-guard/internal/model"
	"github.com/ding113/claude-content-guard/internal/pkg/httpclient"
	"github.com/ding113/claude-content-guard/internal/pkg/logger"
)

// Notifier 违规告警通知器
// 命中后向配置的 Webhook 地址推送违规摘要，尽力而为，失败只记日志
type Notifier struct {
	client  *httpclient.Client
	url     string
	timeout time.Duration
}

// NewNotifier 创建 Notifier；未配置 Webhook 地址时返回 nil
func NewNotifier(cfg config.NotifyConfig) *Notifier {
	if cfg.WebhookURL == "" {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Notifier{
		client: httpclient.New(httpclient.Config{
			Timeout:       timeout,
			RetryCount:    2,
			RetryWaitTime: 200 * time.Millisecond,
		}),
		url:     cfg.WebhookURL,
		timeout: timeout,
	}
}

// violationAlert Webhook 推送的违规摘要
type violationAlert struct {
	Event             string   `json:"event"`
	APIKeyName        string   `json:"apiKeyName"`
	MatchedCategories []string `json:"matchedCategories"`
	MatchedCount      int      `json:"matchedCount"`
	RequestPath       string   `json:"requestPath"`
	Timestamp         string   `json:"timestamp"`
}

// NotifyAsync 异步推送违规告警，不阻塞调用方
func (n *Notifier) NotifyAsync(record *model.ViolationRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.Notify(ctx, record); err != nil {
			logger.Warn().Err(err).Msg("Failed to send violation webhook")
		}
	}()
}

// Notify 推送违规告警
func (n *Notifier) Notify(ctx context.Context, record *model.ViolationRecord) error {
	result := model.CheckResult{MatchedWords: record.MatchedWords}

	alert := violationAlert{
		Event:             "content_violation",
		APIKeyName:        record.APIKeyName,
		MatchedCategories: result.Categories(),
		MatchedCount:      len(record.MatchedWords),
		RequestPath:       record.RequestPath,
		Timestamp:         record.Timestamp.Format(time.RFC3339),
	}

	_, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(alert).
		Post(n.url)

	return err
}
