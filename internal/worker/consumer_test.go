package worker

import (
	"context"
	"testing"

	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/provider"
	"github.com/velo-shop/internal/queue"
	"github.com/velo-shop/internal/service"

	"github.com/hibiken/asynq"
)

func TestHandleOrderNotifyPushSkipInvalidPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task := asynq.NewTask(queue.TaskOrderNotifyPush, []byte(`{"order_id":0}`))
	if err := consumer.handleOrderNotifyPush(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}

	task = asynq.NewTask(queue.TaskOrderNotifyPush, []byte(`{not json`))
	if err := consumer.handleOrderNotifyPush(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should return error")
	}
}

func TestHandleOrderNotifyPushSkipDisabledChannel(t *testing.T) {
	// 通道关闭时直接跳过，不触达订单仓储
	container := &provider.Container{
		PushService: service.NewPushService(&config.PushConfig{Enabled: false}, nil),
	}
	consumer := NewConsumer(container)

	task := asynq.NewTask(queue.TaskOrderNotifyPush, []byte(`{"order_id":42,"type":"new_order"}`))
	if err := consumer.handleOrderNotifyPush(context.Background(), task); err != nil {
		t.Fatalf("disabled channel should be skipped, got %v", err)
	}
}

func TestHandleOrderNotifyMessageSkipDisabledChannel(t *testing.T) {
	container := &provider.Container{
		MessageService: service.NewMessageService(&config.TelegramConfig{Enabled: false}, ""),
	}
	consumer := NewConsumer(container)

	task := asynq.NewTask(queue.TaskOrderNotifyMessage, []byte(`{"order_id":42,"type":"status_change"}`))
	if err := consumer.handleOrderNotifyMessage(context.Background(), task); err != nil {
		t.Fatalf("disabled channel should be skipped, got %v", err)
	}
}

func TestHandleOfflineDrainWithoutSyncer(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task := asynq.NewTask(queue.TaskOfflineDrain, []byte(`{"reason":"manual"}`))
	if err := consumer.handleOfflineDrain(context.Background(), task); err != nil {
		t.Fatalf("missing syncer should be skipped, got %v", err)
	}
}
