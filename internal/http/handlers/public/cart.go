package public

import (
	"errors"
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// CartMergeRequest 本地购物车合并请求
type CartMergeRequest struct {
	Items []CartItemRequest `json:"items"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	detail, err := h.CartService.Get(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, detail)
}

// SetCartItem 添加/更新购物车项；数量小于等于 0 删除该行
func (h *Handler) SetCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.CartService.SetItem(service.SetCartItemInput{
		UserID:    uid,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrProductInactive):
			respondError(c, response.CodeBadRequest, "product not available", nil)
		case errors.Is(err, service.ErrProductOutOfStock):
			respondError(c, response.CodeBadRequest, "product out of stock", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true, "queued": result.Queued})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	result, err := h.CartService.RemoveItem(uid, uint(productID))
	if err != nil {
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true, "queued": result.Queued})
}

// MergeCart 登录后合并本地购物车
func (h *Handler) MergeCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.SetCartItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.SetCartItemInput{
			UserID:    uid,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if err := h.CartService.MergeLocal(uid, items); err != nil {
		respondError(c, response.CodeInternal, "cart merge failed", err)
		return
	}

	detail, err := h.CartService.Get(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, detail)
}
