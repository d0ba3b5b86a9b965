package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/offline"
	"github.com/velo-shop/internal/repository"
)

// SyncApplier 离线队列回放器：把积压的购物车/收藏/订单变更写回主库
type SyncApplier struct {
	cartRepo     repository.CartRepository
	favoriteRepo repository.FavoriteRepository
	orderService *OrderService
}

// NewSyncApplier 创建回放器
func NewSyncApplier(cartRepo repository.CartRepository, favoriteRepo repository.FavoriteRepository, orderService *OrderService) *SyncApplier {
	return &SyncApplier{
		cartRepo:     cartRepo,
		favoriteRepo: favoriteRepo,
		orderService: orderService,
	}
}

// Apply 回放单条队列条目
func (a *SyncApplier) Apply(ctx context.Context, entry localstore.SyncEntry) error {
	switch entry.Type {
	case constants.SyncTypeCart:
		return a.applyCart(entry)
	case constants.SyncTypeFavorite:
		return a.applyFavorite(entry)
	case constants.SyncTypeOrder:
		return a.applyOrder(entry)
	default:
		// 未知类型直接丢弃，避免队列被卡死
		logger.Warnw("sync_unknown_entry_type", "entry_id", entry.ID, "type", entry.Type)
		return nil
	}
}

func (a *SyncApplier) applyCart(entry localstore.SyncEntry) error {
	var payload offline.CartSyncPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return fmt.Errorf("decode cart payload: %w", err)
	}
	if payload.UserID == 0 || payload.ProductID == 0 {
		return fmt.Errorf("cart payload invalid: user=%d product=%d", payload.UserID, payload.ProductID)
	}
	switch entry.Action {
	case constants.SyncActionRemove:
		return a.cartRepo.DeleteByUserAndProduct(payload.UserID, payload.ProductID)
	default:
		if payload.Quantity <= 0 {
			return a.cartRepo.DeleteByUserAndProduct(payload.UserID, payload.ProductID)
		}
		return a.cartRepo.Upsert(&models.CartItem{
			UserID:    payload.UserID,
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
		})
	}
}

func (a *SyncApplier) applyFavorite(entry localstore.SyncEntry) error {
	var payload offline.FavoriteSyncPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return fmt.Errorf("decode favorite payload: %w", err)
	}
	if payload.UserID == 0 || payload.ProductID == 0 {
		return fmt.Errorf("favorite payload invalid: user=%d product=%d", payload.UserID, payload.ProductID)
	}
	switch entry.Action {
	case constants.SyncActionRemove:
		return a.favoriteRepo.Remove(payload.UserID, payload.ProductID)
	default:
		return a.favoriteRepo.Add(&models.Favorite{UserID: payload.UserID, ProductID: payload.ProductID})
	}
}

func (a *SyncApplier) applyOrder(entry localstore.SyncEntry) error {
	var payload offline.OrderSyncPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return fmt.Errorf("decode order payload: %w", err)
	}
	input := CheckoutInput{
		UserID:         payload.UserID,
		CustomerName:   payload.CustomerName,
		Phone:          payload.Phone,
		Email:          payload.Email,
		DeliveryMethod: payload.DeliveryMethod,
		Address:        payload.Address,
		Comment:        payload.Comment,
	}
	for _, item := range payload.Items {
		input.Items = append(input.Items, CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := a.orderService.ReplayCheckout(input)
	if err != nil {
		return err
	}
	logger.Infow("offline_order_replayed", "entry_id", entry.ID, "order_no", order.OrderNo)
	return nil
}
