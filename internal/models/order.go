package models

import (
	"time"
)

// Order 订单表
// 订单只通过状态流转变更，从不删除。
type Order struct {
	ID             uint       `gorm:"primarykey" json:"id"`                               // 主键
	OrderNo        string     `gorm:"uniqueIndex;not null" json:"order_no"`               // 订单编号
	UserID         uint       `gorm:"index;not null;default:0" json:"user_id,omitempty"`  // 用户ID（游客订单为 0）
	CustomerName   string     `gorm:"type:varchar(200);not null" json:"customer_name"`    // 客户姓名
	Phone          string     `gorm:"type:varchar(40);not null;index" json:"phone"`       // 联系电话
	Email          string     `gorm:"type:varchar(200)" json:"email,omitempty"`           // 联系邮箱
	DeliveryMethod string     `gorm:"type:varchar(20);not null" json:"delivery_method"`   // 配送方式（pickup/courier）
	Address        string     `gorm:"type:text" json:"address,omitempty"`                 // 配送地址
	Comment        string     `gorm:"type:text" json:"comment,omitempty"`                 // 订单留言
	Status         string     `gorm:"index;not null" json:"status"`                       // 订单状态
	TotalAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total"` // 订单总额
	ConfirmedAt    *time.Time `gorm:"index" json:"confirmed_at,omitempty"`                // 确认时间
	CompletedAt    *time.Time `gorm:"index" json:"completed_at,omitempty"`                // 完成时间
	CanceledAt     *time.Time `gorm:"index" json:"cancelled_at,omitempty"`                // 取消时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt      time.Time  `gorm:"index" json:"updated_at"`                            // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项快照
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
