package public

import (
	"errors"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// PushSubscribeRequest Web Push 订阅请求
type PushSubscribeRequest struct {
	Endpoint string      `json:"endpoint" binding:"required"`
	Keys     models.JSON `json:"keys"`
}

// PushUnsubscribeRequest 取消订阅请求
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// SubscribePush 保存浏览器推送订阅
func (h *Handler) SubscribePush(c *gin.Context) {
	var req PushSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.PushService.Subscribe(req.Endpoint, req.Keys); err != nil {
		if errors.Is(err, service.ErrSubscriptionInvalid) {
			respondError(c, response.CodeBadRequest, "subscription endpoint invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "subscription save failed", err)
		return
	}
	response.Success(c, gin.H{"subscribed": true})
}

// UnsubscribePush 删除推送订阅
func (h *Handler) UnsubscribePush(c *gin.Context) {
	var req PushUnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.PushService.Unsubscribe(req.Endpoint); err != nil {
		if errors.Is(err, service.ErrSubscriptionInvalid) {
			respondError(c, response.CodeBadRequest, "subscription endpoint invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "subscription delete failed", err)
		return
	}
	response.Success(c, gin.H{"subscribed": false})
}
