package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/provider"
	"github.com/velo-shop/internal/queue"
	"github.com/velo-shop/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderNotifyPush, c.handleOrderNotifyPush)
	mux.HandleFunc(queue.TaskOrderNotifyMessage, c.handleOrderNotifyMessage)
	mux.HandleFunc(queue.TaskOfflineDrain, c.handleOfflineDrain)
}

func (c *Consumer) handleOrderNotifyPush(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_notify_push_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotifyPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_notify_push_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_notify_push_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.PushService == nil || !c.PushService.Enabled() {
		logger.Debugw("worker_order_notify_push_skip_disabled", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_notify_push_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_notify_push_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	report, err := c.PushService.NotifyOrder(ctx, order, payload.Type)
	if err != nil {
		if errors.Is(err, service.ErrNotificationDisabled) {
			return nil
		}
		logger.Warnw("worker_order_notify_push_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"type", payload.Type,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_order_notify_push_done",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"type", payload.Type,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return nil
}

func (c *Consumer) handleOrderNotifyMessage(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_notify_message_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotifyMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_notify_message_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_notify_message_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.MessageService == nil || !c.MessageService.Enabled() {
		logger.Debugw("worker_order_notify_message_skip_disabled", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_notify_message_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_notify_message_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if err := c.MessageService.NotifyOrder(ctx, order, payload.Type); err != nil {
		if errors.Is(err, service.ErrNotificationDisabled) {
			return nil
		}
		logger.Warnw("worker_order_notify_message_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"type", payload.Type,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOfflineDrain(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_offline_drain_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OfflineDrainPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_offline_drain_unmarshal_failed", "error", err)
		return err
	}
	if c.Syncer == nil {
		logger.Debugw("worker_offline_drain_skip_syncer_nil", "reason", payload.Reason)
		return nil
	}
	logger.Infow("worker_offline_drain_kick", "reason", payload.Reason)
	c.Syncer.Kick()
	return nil
}
