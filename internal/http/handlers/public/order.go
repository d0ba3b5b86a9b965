package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutItemRequest 下单商品行请求
type CheckoutItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	CustomerName   string                `json:"customer_name"`
	Phone          string                `json:"phone"`
	Email          string                `json:"email"`
	DeliveryMethod string                `json:"delivery_method"`
	Address        string                `json:"address"`
	Comment        string                `json:"comment"`
	Items          []CheckoutItemRequest `json:"items"`
	FromCart       bool                  `json:"from_cart"`
}

func (r CheckoutRequest) toInput(userID uint) service.CheckoutInput {
	items := make([]service.CheckoutItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return service.CheckoutInput{
		UserID:         userID,
		CustomerName:   r.CustomerName,
		Phone:          r.Phone,
		Email:          r.Email,
		DeliveryMethod: r.DeliveryMethod,
		Address:        r.Address,
		Comment:        r.Comment,
		Items:          items,
		FromCart:       r.FromCart,
	}
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCustomerInfoInvalid, code: response.CodeBadRequest, msg: "customer info invalid"},
	{target: service.ErrOrderItemsEmpty, code: response.CodeBadRequest, msg: "order has no items"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "quantity invalid"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrProductOutOfStock, code: response.CodeBadRequest, msg: "product out of stock"},
	{target: service.ErrOfflineUnavailable, code: response.CodeServiceUnavailable, msg: "service unavailable"},
}

// CreateOrder 用户下单（离线时变更入队等待回放）
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.OrderService.Checkout(req.toInput(uid))
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "order create failed")
		return
	}
	if result.Queued {
		response.SuccessWithMsg(c, "accepted offline", gin.H{"queued": true})
		return
	}
	response.Success(c, result.Order)
}

// CreateGuestOrder 游客下单
func (h *Handler) CreateGuestOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.FromCart {
		respondError(c, response.CodeBadRequest, "guest checkout requires explicit items", nil)
		return
	}

	result, err := h.OrderService.Checkout(req.toInput(0))
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "order create failed")
		return
	}
	if result.Queued {
		response.SuccessWithMsg(c, "accepted offline", gin.H{"queued": true})
		return
	}
	response.Success(c, result.Order)
}

// ListOrders 用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	orders, total, err := h.OrderService.ListByUser(uid, page, pageSize, status)
	if err != nil {
		respondError(c, response.CodeInternal, "orders fetch failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 用户订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, err := h.OrderService.GetForUser(uint(orderID), uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, order)
}

// TrackOrder 按订单编号 + 电话查询订单状态（公开）
func (h *Handler) TrackOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Query("order_no"))
	phone := strings.TrimSpace(c.Query("phone"))
	if orderNo == "" || phone == "" {
		respondError(c, response.CodeBadRequest, "order_no and phone are required", nil)
		return
	}

	order, err := h.OrderService.TrackByOrderNo(orderNo, phone)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"order_no":   order.OrderNo,
		"status":     order.Status,
		"total":      order.TotalAmount,
		"created_at": order.CreatedAt,
	})
}
