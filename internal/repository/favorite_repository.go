package repository

import (
	"errors"

	"github.com/velo-shop/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository 收藏数据访问接口
type FavoriteRepository interface {
	ListByUser(userID uint) ([]models.Favorite, error)
	ListProductIDs(userID uint) ([]uint, error)
	Add(favorite *models.Favorite) error
	Remove(userID, productID uint) error
	Exists(userID, productID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormFavoriteRepository
}

// GormFavoriteRepository GORM 实现
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓库
func NewFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// WithTx 绑定事务
func (r *GormFavoriteRepository) WithTx(tx *gorm.DB) *GormFavoriteRepository {
	if tx == nil {
		return r
	}
	return &GormFavoriteRepository{db: tx}
}

// ListByUser 获取用户收藏（含商品）
func (r *GormFavoriteRepository) ListByUser(userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("created_at desc").Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

// ListProductIDs 获取用户收藏的商品 ID 集
func (r *GormFavoriteRepository) ListProductIDs(userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Favorite{}).Where("user_id = ?", userID).Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Add 添加收藏（重复添加不报错）
func (r *GormFavoriteRepository) Add(favorite *models.Favorite) error {
	if favorite == nil {
		return nil
	}
	var existing models.Favorite
	err := r.db.Where("user_id = ? AND product_id = ?", favorite.UserID, favorite.ProductID).First(&existing).Error
	if err == nil {
		favorite.ID = existing.ID
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(favorite).Error
}

// Remove 取消收藏
func (r *GormFavoriteRepository) Remove(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{}).Error
}

// Exists 判断收藏是否存在
func (r *GormFavoriteRepository) Exists(userID, productID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Favorite{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
