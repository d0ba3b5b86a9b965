package service

import (
	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// FavoriteService 收藏服务
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	queue        OfflineQueue
	signal       ConnectivitySignal
}

// NewFavoriteService 创建收藏服务
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository, queue OfflineQueue, signal ConnectivitySignal) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		queue:        queue,
		signal:       signal,
	}
}

// List 获取用户收藏（含商品详情）
func (s *FavoriteService) List(userID uint) ([]models.Favorite, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	return s.favoriteRepo.ListByUser(userID)
}

// ProductIDs 收藏的商品 ID 集
func (s *FavoriteService) ProductIDs(userID uint) ([]uint, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	return s.favoriteRepo.ListProductIDs(userID)
}

// Add 添加收藏，重复添加不报错
func (s *FavoriteService) Add(userID, productID uint) (MutationResult, error) {
	if userID == 0 || productID == 0 {
		return MutationResult{}, ErrProductNotFound
	}
	payload := offlineFavoritePayload(userID, productID)
	return applyOptimistic(s.signal, s.queue, constants.SyncTypeFavorite, constants.SyncActionCreate, payload, func() error {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return ErrProductNotFound
		}
		return s.favoriteRepo.Add(&models.Favorite{UserID: userID, ProductID: productID})
	})
}

// Remove 取消收藏，收藏不存在时视为成功
func (s *FavoriteService) Remove(userID, productID uint) (MutationResult, error) {
	if userID == 0 || productID == 0 {
		return MutationResult{}, ErrProductNotFound
	}
	payload := offlineFavoritePayload(userID, productID)
	return applyOptimistic(s.signal, s.queue, constants.SyncTypeFavorite, constants.SyncActionRemove, payload, func() error {
		return s.favoriteRepo.Remove(userID, productID)
	})
}

// Toggle 切换收藏状态，返回切换后是否已收藏
func (s *FavoriteService) Toggle(userID, productID uint) (bool, MutationResult, error) {
	exists, err := s.favoriteRepo.Exists(userID, productID)
	if err != nil {
		return false, MutationResult{}, err
	}
	if exists {
		result, err := s.Remove(userID, productID)
		return false, result, err
	}
	result, err := s.Add(userID, productID)
	return true, result, err
}

// MergeLocal 合并客户端本地收藏（登录时调用），逐条幂等添加
func (s *FavoriteService) MergeLocal(userID uint, productIDs []uint) error {
	if userID == 0 {
		return ErrUserNotFound
	}
	for _, productID := range productIDs {
		if productID == 0 {
			continue
		}
		if _, err := s.Add(userID, productID); err != nil {
			logger.Warnw("favorite_merge_entry_skipped",
				"user_id", userID,
				"product_id", productID,
				"error", err)
			continue
		}
	}
	return nil
}

func offlineFavoritePayload(userID, productID uint) map[string]interface{} {
	return map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	}
}
