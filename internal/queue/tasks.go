package queue

import (
	"encoding/json"

	"github.com/velo-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderNotifyPush 订单推送通知任务
	TaskOrderNotifyPush = constants.TaskOrderNotifyPush
	// TaskOrderNotifyMessage 订单即时消息通知任务
	TaskOrderNotifyMessage = constants.TaskOrderNotifyMessage
	// TaskOfflineDrain 离线队列回放任务
	TaskOfflineDrain = constants.TaskOfflineDrain
)

// OrderNotifyPushPayload 订单推送通知任务载荷
type OrderNotifyPushPayload struct {
	OrderID uint   `json:"order_id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

// OrderNotifyMessagePayload 订单消息通知任务载荷
type OrderNotifyMessagePayload struct {
	OrderID uint   `json:"order_id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

// OfflineDrainPayload 离线队列回放任务载荷
type OfflineDrainPayload struct {
	Reason string `json:"reason"`
}

// NewOrderNotifyPushTask 创建订单推送通知任务
func NewOrderNotifyPushTask(payload OrderNotifyPushPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotifyPush, body), nil
}

// NewOrderNotifyMessageTask 创建订单消息通知任务
func NewOrderNotifyMessageTask(payload OrderNotifyMessagePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotifyMessage, body), nil
}

// NewOfflineDrainTask 创建离线队列回放任务
func NewOfflineDrainTask(payload OfflineDrainPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOfflineDrain, body), nil
}
