package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`                          // 主键
	ProductID uint           `gorm:"not null;index" json:"product_id"`              // 商品ID
	UserID    uint           `gorm:"index;not null;default:0" json:"user_id"`       // 用户ID（游客评价为 0）
	Author    string         `gorm:"type:varchar(200);not null" json:"author"`      // 署名
	Rating    int            `gorm:"not null" json:"rating"`                        // 评分（1-5）
	Text      string         `gorm:"type:text" json:"text"`                         // 评价内容
	Approved  bool           `gorm:"not null;default:false;index" json:"approved"`  // 是否已审核通过
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
