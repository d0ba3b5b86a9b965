package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/velo-shop/internal/constants"
	handlershared "github.com/velo-shop/internal/http/handlers/shared"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// NotifyRequest 通知触发请求，与独立通知函数的调用约定一致。
type NotifyRequest struct {
	OrderID uint   `json:"order_id"`
	Type    string `json:"type"`
}

// 通知端点不走统一响应包裹，直接返回原始 HTTP 状态码。

// NotifyPush 针对订单触发 Web Push 广播
func (h *Handler) NotifyPush(c *gin.Context) {
	if !h.notifyAuthorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	order, err := h.OrderRepo.GetByID(req.OrderID)
	if err != nil {
		handlershared.RequestLog(c).Errorw("notify_push_order_lookup_failed", "order_id", req.OrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	report, err := h.PushService.NotifyOrder(c.Request.Context(), order, notifyType(req.Type))
	if err != nil {
		if errors.Is(err, service.ErrNotificationDisabled) {
			c.JSON(http.StatusOK, gin.H{"success": false, "reason": "push disabled"})
			return
		}
		handlershared.RequestLog(c).Errorw("notify_push_failed", "order_id", req.OrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sent": report.Sent, "failed": report.Failed})
}

// NotifyMessage 针对订单触发 Telegram 消息
func (h *Handler) NotifyMessage(c *gin.Context) {
	if !h.notifyAuthorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	order, err := h.OrderRepo.GetByID(req.OrderID)
	if err != nil {
		handlershared.RequestLog(c).Errorw("notify_message_order_lookup_failed", "order_id", req.OrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := h.MessageService.NotifyOrder(c.Request.Context(), order, notifyType(req.Type)); err != nil {
		if errors.Is(err, service.ErrNotificationDisabled) {
			c.JSON(http.StatusOK, gin.H{"success": false, "reason": "message channel disabled"})
			return
		}
		handlershared.RequestLog(c).Errorw("notify_message_failed", "order_id", req.OrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) notifyAuthorized(c *gin.Context) bool {
	token := strings.TrimSpace(h.Config.Push.AuthToken)
	if token == "" {
		return true
	}
	header := c.GetHeader("Authorization")
	return header == "Bearer "+token
}

func notifyType(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return constants.NotifyTypeNewOrder
	}
	return raw
}
