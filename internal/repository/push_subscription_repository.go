package repository

import (
	"errors"

	"github.com/velo-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushSubscriptionRepository 推送订阅数据访问接口
type PushSubscriptionRepository interface {
	ListAll() ([]models.PushSubscription, error)
	GetByEndpoint(endpoint string) (*models.PushSubscription, error)
	Upsert(sub *models.PushSubscription) error
	DeleteByEndpoint(endpoint string) error
	Count() (int64, error)
}

// GormPushSubscriptionRepository GORM 实现
type GormPushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository 创建推送订阅仓库
func NewPushSubscriptionRepository(db *gorm.DB) *GormPushSubscriptionRepository {
	return &GormPushSubscriptionRepository{db: db}
}

// ListAll 全部订阅
func (r *GormPushSubscriptionRepository) ListAll() ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.Order("id ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// GetByEndpoint 根据端点获取订阅
func (r *GormPushSubscriptionRepository) GetByEndpoint(endpoint string) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	if err := r.db.Where("endpoint = ?", endpoint).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Upsert 写入订阅，端点冲突时覆盖密钥
func (r *GormPushSubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"keys", "updated_at"}),
	}).Create(sub).Error
}

// DeleteByEndpoint 按端点删除订阅
func (r *GormPushSubscriptionRepository) DeleteByEndpoint(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}

// Count 订阅总数
func (r *GormPushSubscriptionRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&models.PushSubscription{}).Count(&total).Error
	return total, err
}
