package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                  // 主键
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`                     // 分类ID
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                      // 唯一标识
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`                // 商品名称
	Description string         `gorm:"type:text" json:"description"`                          // 商品描述
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`    // 价格
	SalePrice   *Money         `gorm:"type:decimal(20,2)" json:"sale_price,omitempty"`        // 促销价（可空，须低于价格）
	Images      StringArray    `gorm:"type:json" json:"images"`                               // 图片数组
	InStock     bool           `gorm:"not null;default:true;index" json:"in_stock"`           // 是否有货
	StockQty    int            `gorm:"not null;default:0" json:"stock_qty"`                   // 库存数量
	Season      string         `gorm:"type:varchar(20);not null;default:'all'" json:"season"` // 季节标签（summer/winter/all）
	IsFeatured  bool           `gorm:"not null;default:false;index" json:"is_featured"`       // 是否精选
	IsNew       bool           `gorm:"not null;default:false;index" json:"is_new"`            // 是否新品
	Rating      float64        `gorm:"not null;default:0" json:"rating"`                      // 评分均值
	RatingCount int            `gorm:"not null;default:0" json:"rating_count"`                // 评分数量
	Specs       JSON           `gorm:"type:json" json:"specs"`                                // 规格参数（自由键值）
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                   // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                     // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	// 关联
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// EffectivePrice 返回实际售价：促销价存在且低于原价时取促销价
func (p Product) EffectivePrice() Money {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price.Decimal) {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale 判断是否处于促销
func (p Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price.Decimal)
}
