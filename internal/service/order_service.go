package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/metrics"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/offline"
	"github.com/velo-shop/internal/queue"
	"github.com/velo-shop/internal/repository"
)

// CheckoutItem 下单商品行
type CheckoutItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	UserID         uint
	CustomerName   string
	Phone          string
	Email          string
	DeliveryMethod string
	Address        string
	Comment        string
	Items          []CheckoutItem
	FromCart       bool // 为真时以服务端购物车为准并在下单后清空
}

// CheckoutResult 结算结果
type CheckoutResult struct {
	Order  *models.Order
	Queued bool // 订单进入离线队列等待回放
}

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	queueClient   *queue.Client
	offlineQueue  OfflineQueue
	signal        ConnectivitySignal
	orderNoPrefix string
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	queueClient *queue.Client,
	offlineQueue OfflineQueue,
	signal ConnectivitySignal,
	orderNoPrefix string,
) *OrderService {
	prefix := strings.TrimSpace(orderNoPrefix)
	if prefix == "" {
		prefix = "VS"
	}
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		queueClient:   queueClient,
		offlineQueue:  offlineQueue,
		signal:        signal,
		orderNoPrefix: prefix,
	}
}

// 订单状态机：键为当前状态，值为允许迁移到的状态集合
var orderTransitions = map[string][]string{
	constants.OrderStatusNew:        {constants.OrderStatusProcessing, constants.OrderStatusCanceled},
	constants.OrderStatusProcessing: {constants.OrderStatusConfirmed, constants.OrderStatusCanceled},
	constants.OrderStatusConfirmed:  {constants.OrderStatusCompleted, constants.OrderStatusCanceled},
	constants.OrderStatusCompleted:  {},
	constants.OrderStatusCanceled:   {},
}

// CanTransition 判断订单状态迁移是否合法
func CanTransition(from, to string) bool {
	allowed, ok := orderTransitions[strings.TrimSpace(from)]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == strings.TrimSpace(to) {
			return true
		}
	}
	return false
}

// Checkout 创建订单。
// 主库不可达时把完整下单载荷写入离线队列，连通恢复后回放。
func (s *OrderService) Checkout(input CheckoutInput) (*CheckoutResult, error) {
	if err := validateCustomerInfo(input); err != nil {
		return nil, err
	}

	if s.signal != nil && !s.signal.Online() {
		return s.queueOffline(input)
	}

	items := input.Items
	if input.FromCart {
		cartItems, err := s.cartRepo.ListByUser(input.UserID)
		if err != nil {
			if offline.IsNetError(err) {
				if s.signal != nil {
					s.signal.ReportFailure(err)
				}
				return s.queueOffline(input)
			}
			return nil, err
		}
		items = items[:0]
		for _, item := range cartItems {
			items = append(items, CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	if len(items) == 0 {
		return nil, ErrOrderItemsEmpty
	}

	order, orderItems, err := s.buildOrder(input, items)
	if err != nil {
		if offline.IsNetError(err) {
			if s.signal != nil {
				s.signal.ReportFailure(err)
			}
			return s.queueOffline(input)
		}
		return nil, err
	}

	if err := s.orderRepo.Create(order, orderItems); err != nil {
		if offline.IsNetError(err) {
			if s.signal != nil {
				s.signal.ReportFailure(err)
			}
			return s.queueOffline(input)
		}
		return nil, err
	}
	if s.signal != nil {
		s.signal.ReportSuccess()
	}

	if input.FromCart && input.UserID != 0 {
		if err := s.cartRepo.ClearByUser(input.UserID); err != nil {
			logger.Warnw("checkout_clear_cart_failed", "user_id", input.UserID, "error", err)
		}
	}

	metrics.OrdersCreatedTotal.Inc()
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"total", order.TotalAmount.String(),
		"items", len(orderItems))

	s.notify(order.ID, constants.NotifyTypeNewOrder, order.Status)

	order.Items = orderItems
	return &CheckoutResult{Order: order}, nil
}

// ReplayCheckout 回放离线期间入队的订单（同步回放路径，不再二次入队）
func (s *OrderService) ReplayCheckout(input CheckoutInput) (*models.Order, error) {
	if err := validateCustomerInfo(input); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsEmpty
	}
	order, orderItems, err := s.buildOrder(input, input.Items)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(order, orderItems); err != nil {
		return nil, err
	}
	metrics.OrdersCreatedTotal.Inc()
	s.notify(order.ID, constants.NotifyTypeNewOrder, order.Status)
	order.Items = orderItems
	return order, nil
}

func (s *OrderService) queueOffline(input CheckoutInput) (*CheckoutResult, error) {
	if s.offlineQueue == nil {
		return nil, ErrOfflineUnavailable
	}
	if len(input.Items) == 0 {
		// 离线下单必须携带明细，购物车内容在服务端不可达
		return nil, ErrOrderItemsEmpty
	}
	payload := offline.OrderSyncPayload{
		UserID:         input.UserID,
		CustomerName:   input.CustomerName,
		Phone:          input.Phone,
		Email:          input.Email,
		DeliveryMethod: input.DeliveryMethod,
		Address:        input.Address,
		Comment:        input.Comment,
	}
	for _, item := range input.Items {
		payload.Items = append(payload.Items, offline.OrderSyncItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	entry, err := s.offlineQueue.EnqueueSync(constants.SyncTypeOrder, constants.SyncActionCreate, payload)
	if err != nil {
		return nil, err
	}
	metrics.OrdersOfflineQueuedTotal.Inc()
	logger.Infow("order_queued_offline", "entry_id", entry.ID, "user_id", input.UserID)
	return &CheckoutResult{Queued: true}, nil
}

func (s *OrderService) buildOrder(input CheckoutInput, items []CheckoutItem) (*models.Order, []models.OrderItem, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, nil, ErrQuantityInvalid
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product == nil || !product.IsActive {
			return nil, nil, ErrProductNotFound
		}
		if !product.InStock {
			return nil, nil, ErrProductOutOfStock
		}
		unitPrice := product.EffectivePrice()
		var image string
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
			Image:     image,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	orderNo, err := s.generateOrderNo()
	if err != nil {
		return nil, nil, err
	}
	order := &models.Order{
		OrderNo:        orderNo,
		UserID:         input.UserID,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		DeliveryMethod: input.DeliveryMethod,
		Address:        strings.TrimSpace(input.Address),
		Comment:        strings.TrimSpace(input.Comment),
		Status:         constants.OrderStatusNew,
		TotalAmount:    models.NewMoneyFromDecimal(total),
	}
	return order, orderItems, nil
}

// UpdateStatus 按状态机迁移订单状态并记录时间戳
func (s *OrderService) UpdateStatus(orderID uint, toStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	toStatus = strings.TrimSpace(toStatus)
	if !CanTransition(order.Status, toStatus) {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	switch toStatus {
	case constants.OrderStatusConfirmed:
		updates["confirmed_at"] = &now
	case constants.OrderStatusCompleted:
		updates["completed_at"] = &now
	case constants.OrderStatusCanceled:
		updates["canceled_at"] = &now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, toStatus, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", order.Status,
		"to", toStatus)

	s.notify(order.ID, constants.NotifyTypeStatusChange, toStatus)

	order.Status = toStatus
	return order, nil
}

// GetForUser 用户订单详情（校验归属）
func (s *OrderService) GetForUser(orderID, userID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// TrackByOrderNo 按订单编号查询（游客下单后的追踪入口）
func (s *OrderService) TrackByOrderNo(orderNo, phone string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	// 游客追踪需校验下单电话，避免订单编号被枚举
	if normalizePhone(order.Phone) != normalizePhone(phone) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 用户订单列表
func (s *OrderService) ListByUser(userID uint, page, pageSize int, status string) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, ErrOrderNotFound
	}
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   status,
	})
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetAdmin 管理端订单详情
func (s *OrderService) GetAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) notify(orderID uint, notifyType, status string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderNotifyPush(queue.OrderNotifyPushPayload{
		OrderID: orderID,
		Type:    notifyType,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_notify_push_enqueue_failed", "order_id", orderID, "error", err)
	}
	if err := s.queueClient.EnqueueOrderNotifyMessage(queue.OrderNotifyMessagePayload{
		OrderID: orderID,
		Type:    notifyType,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_notify_message_enqueue_failed", "order_id", orderID, "error", err)
	}
}

// generateOrderNo 生成订单编号：前缀-日期-6 位随机数字，冲突时重试
func (s *OrderService) generateOrderNo() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		orderNo := fmt.Sprintf("%s-%s-%s", s.orderNoPrefix, time.Now().Format("20060102"), randNumeric(6))
		count, err := s.orderRepo.CountByOrderNo(orderNo)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return orderNo, nil
		}
	}
	// 连续冲突时退化为更长随机段
	return fmt.Sprintf("%s-%s-%s", s.orderNoPrefix, time.Now().Format("20060102"), randNumeric(10)), nil
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

func validateCustomerInfo(input CheckoutInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return ErrCustomerInfoInvalid
	}
	if normalizePhone(input.Phone) == "" {
		return ErrCustomerInfoInvalid
	}
	switch input.DeliveryMethod {
	case constants.DeliveryMethodPickup:
	case constants.DeliveryMethodCourier:
		if strings.TrimSpace(input.Address) == "" {
			return ErrCustomerInfoInvalid
		}
	default:
		return ErrCustomerInfoInvalid
	}
	return nil
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
