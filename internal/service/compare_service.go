package service

import (
	"context"

	"github.com/velo-shop/internal/cache"
	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// CompareDetail 对比清单响应
type CompareDetail struct {
	ProductIDs []uint           `json:"product_ids"`
	Products   []models.Product `json:"products"`
	Limit      int              `json:"limit"`
}

// CompareService 商品对比服务，清单按会话保存在 Redis
type CompareService struct {
	productRepo repository.ProductRepository
}

// NewCompareService 创建对比服务
func NewCompareService(productRepo repository.ProductRepository) *CompareService {
	return &CompareService{productRepo: productRepo}
}

// Get 获取对比清单及商品详情
func (s *CompareService) Get(ctx context.Context, sessionID string) (*CompareDetail, error) {
	list, err := cache.GetCompareList(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	detail := &CompareDetail{
		ProductIDs: list.ProductIDs,
		Limit:      constants.CompareLimit,
	}
	if len(list.ProductIDs) == 0 {
		return detail, nil
	}
	products, err := s.productRepo.ListByIDs(list.ProductIDs)
	if err != nil {
		return nil, err
	}
	// 保持加入顺序
	byID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	ordered := make([]models.Product, 0, len(list.ProductIDs))
	for _, id := range list.ProductIDs {
		if product, ok := byID[id]; ok {
			ordered = append(ordered, product)
		}
	}
	detail.Products = ordered
	return detail, nil
}

// Add 加入对比清单，重复加入不报错，超过容量上限拒绝
func (s *CompareService) Add(ctx context.Context, sessionID string, productID uint) (*CompareDetail, error) {
	if productID == 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	list, err := cache.GetCompareList(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	list.SessionID = sessionID
	for _, id := range list.ProductIDs {
		if id == productID {
			return s.Get(ctx, sessionID)
		}
	}
	if len(list.ProductIDs) >= constants.CompareLimit {
		return nil, ErrCompareLimitReached
	}
	list.ProductIDs = append(list.ProductIDs, productID)
	if err := cache.SetCompareList(ctx, list); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

// Remove 从对比清单移除
func (s *CompareService) Remove(ctx context.Context, sessionID string, productID uint) (*CompareDetail, error) {
	list, err := cache.GetCompareList(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	list.SessionID = sessionID
	kept := make([]uint, 0, len(list.ProductIDs))
	for _, id := range list.ProductIDs {
		if id != productID {
			kept = append(kept, id)
		}
	}
	list.ProductIDs = kept
	if err := cache.SetCompareList(ctx, list); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

// Clear 清空对比清单
func (s *CompareService) Clear(ctx context.Context, sessionID string) error {
	return cache.DelCompareList(ctx, sessionID)
}
