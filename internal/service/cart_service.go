package service

import (
	"github.com/shopspring/decimal"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	LineTotal models.Money    `json:"line_total"`
	Product   *models.Product `json:"product"`
}

// CartDetail 购物车聚合响应
type CartDetail struct {
	Items      []CartItemDetail `json:"items"`
	TotalQty   int              `json:"total_qty"`
	TotalPrice models.Money     `json:"total_price"`
	Queued     bool             `json:"queued,omitempty"` // 最近一次变更进入离线队列
}

// SetCartItemInput 购物车写入输入
type SetCartItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// CartService 购物车服务。
// 数量小于等于 0 时直接删除该行，状态层不保留零数量行。
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	queue       OfflineQueue
	signal      ConnectivitySignal
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, queue OfflineQueue, signal ConnectivitySignal) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		queue:       queue,
		signal:      signal,
	}
}

// Get 获取用户购物车，总价按实际售价累计
func (s *CartService) Get(userID uint) (*CartDetail, error) {
	if userID == 0 {
		return nil, ErrQuantityInvalid
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	detail := &CartDetail{Items: make([]CartItemDetail, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			// 已下架商品从购物车剔除
			_ = s.cartRepo.DeleteByUserAndProduct(userID, item.ProductID)
			continue
		}
		unitPrice := product.EffectivePrice()
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		detail.Items = append(detail.Items, CartItemDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
			Product:   product,
		})
		detail.TotalQty += item.Quantity
		total = total.Add(lineTotal)
	}
	detail.TotalPrice = models.NewMoneyFromDecimal(total)
	return detail, nil
}

// SetItem 设置购物车项数量。
// 数量 <= 0 等价于移除该行；在线失败且属网络错误时写入离线队列。
func (s *CartService) SetItem(input SetCartItemInput) (MutationResult, error) {
	if input.UserID == 0 || input.ProductID == 0 {
		return MutationResult{}, ErrQuantityInvalid
	}
	if input.Quantity <= 0 {
		return s.RemoveItem(input.UserID, input.ProductID)
	}

	payload := offlineCartPayload(input.UserID, input.ProductID, input.Quantity)
	return applyOptimistic(s.signal, s.queue, constants.SyncTypeCart, constants.SyncActionUpsert, payload, func() error {
		product, err := s.productRepo.GetByID(input.ProductID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return ErrProductNotFound
		}
		if !product.InStock {
			return ErrProductOutOfStock
		}
		return s.cartRepo.Upsert(&models.CartItem{
			UserID:    input.UserID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
		})
	})
}

// RemoveItem 移除购物车项
func (s *CartService) RemoveItem(userID, productID uint) (MutationResult, error) {
	if userID == 0 || productID == 0 {
		return MutationResult{}, ErrQuantityInvalid
	}
	payload := offlineCartPayload(userID, productID, 0)
	return applyOptimistic(s.signal, s.queue, constants.SyncTypeCart, constants.SyncActionRemove, payload, func() error {
		return s.cartRepo.DeleteByUserAndProduct(userID, productID)
	})
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrQuantityInvalid
	}
	return s.cartRepo.ClearByUser(userID)
}

// MergeLocal 合并客户端本地购物车（登录时调用）。
// 本地数量覆盖服务端数量，数量 <= 0 的行跳过。
func (s *CartService) MergeLocal(userID uint, items []SetCartItemInput) error {
	if userID == 0 {
		return ErrQuantityInvalid
	}
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			continue
		}
		item.UserID = userID
		if _, err := s.SetItem(item); err != nil {
			// 单行失败不中断合并
			continue
		}
	}
	return nil
}

func offlineCartPayload(userID, productID uint, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}
}
