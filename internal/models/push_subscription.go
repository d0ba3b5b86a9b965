package models

import (
	"time"
)

// PushSubscription 推送订阅表
// 端点返回 404/410 时视为失效并删除该行。
type PushSubscription struct {
	ID        uint      `gorm:"primarykey" json:"id"`                            // 主键
	Endpoint  string    `gorm:"type:varchar(1000);uniqueIndex" json:"endpoint"`  // 推送端点 URL
	Keys      JSON      `gorm:"type:json" json:"keys"`                           // 端点密钥材料
	CreatedAt time.Time `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
