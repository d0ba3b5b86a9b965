package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/metrics"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// PushMessage 推送消息体
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// PushReport 一次广播的投递结果
type PushReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// PushService 推送通知服务。
// 向全部订阅端点广播消息；端点返回 404/410 时删除该订阅。
type PushService struct {
	cfg     *config.PushConfig
	subRepo repository.PushSubscriptionRepository
	client  *http.Client
}

// NewPushService 创建推送服务
func NewPushService(cfg *config.PushConfig, subRepo repository.PushSubscriptionRepository) *PushService {
	timeout := 5 * time.Second
	if cfg != nil && cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &PushService{
		cfg:     cfg,
		subRepo: subRepo,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled 推送通道是否启用
func (s *PushService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// Subscribe 保存推送订阅，端点重复时覆盖密钥
func (s *PushService) Subscribe(endpoint string, keys models.JSON) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || !strings.HasPrefix(endpoint, "https://") {
		return ErrSubscriptionInvalid
	}
	return s.subRepo.Upsert(&models.PushSubscription{
		Endpoint: endpoint,
		Keys:     keys,
	})
}

// Unsubscribe 删除推送订阅
func (s *PushService) Unsubscribe(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ErrSubscriptionInvalid
	}
	return s.subRepo.DeleteByEndpoint(endpoint)
}

// Broadcast 向全部订阅广播消息并返回投递统计。
// 失效端点（404/410）在广播过程中被清理。
func (s *PushService) Broadcast(ctx context.Context, message PushMessage) (*PushReport, error) {
	if !s.Enabled() {
		return nil, ErrNotificationDisabled
	}
	subs, err := s.subRepo.ListAll()
	if err != nil {
		return nil, err
	}

	report := &PushReport{}
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		status, err := s.deliver(ctx, sub.Endpoint, payload)
		if err == nil && status < 300 {
			report.Sent++
			metrics.PushSentTotal.WithLabelValues("sent").Inc()
			continue
		}
		report.Failed++
		metrics.PushSentTotal.WithLabelValues("failed").Inc()
		if status == http.StatusNotFound || status == http.StatusGone {
			if err := s.subRepo.DeleteByEndpoint(sub.Endpoint); err != nil {
				logger.Warnw("push_subscription_cleanup_failed", "endpoint", sub.Endpoint, "error", err)
			} else {
				logger.Infow("push_subscription_expired", "endpoint", sub.Endpoint, "status", status)
			}
			continue
		}
		logger.Warnw("push_delivery_failed", "endpoint", sub.Endpoint, "status", status, "error", err)
	}

	logger.Infow("push_broadcast_done", "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

// NotifyOrder 构造订单通知消息并广播
func (s *PushService) NotifyOrder(ctx context.Context, order *models.Order, notifyType string) (*PushReport, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	message := PushMessage{Tag: fmt.Sprintf("order-%d", order.ID)}
	switch notifyType {
	case constants.NotifyTypeStatusChange:
		message.Title = "Order status updated"
		message.Body = fmt.Sprintf("Order %s is now %s", order.OrderNo, order.Status)
	default:
		message.Title = "New order received"
		message.Body = fmt.Sprintf("Order %s from %s, total %s", order.OrderNo, order.CustomerName, order.TotalAmount.String())
	}
	return s.Broadcast(ctx, message)
}

func (s *PushService) deliver(ctx context.Context, endpoint string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", "86400")
	if s.cfg != nil && strings.TrimSpace(s.cfg.AuthToken) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(s.cfg.AuthToken))
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
