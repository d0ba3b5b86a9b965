package models

import (
	"time"
)

// OrderItem 订单项表
// 下单时对商品名称/价格/图片做快照，与后续商品行变更解耦。
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID uint      `gorm:"index;not null" json:"product_id"`                        // 商品ID
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`                  // 商品名称快照
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 成交单价快照
	Quantity  int       `gorm:"not null" json:"quantity"`                                // 数量
	Image     string    `gorm:"type:varchar(500)" json:"image"`                          // 主图快照
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 订单项小计
func (i OrderItem) LineTotal() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Mul(decimalFromInt(i.Quantity)))
}
