package admin

import (
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/queue"

	"github.com/gin-gonic/gin"
)

// ListPushSubscriptions 推送订阅列表
func (h *Handler) ListPushSubscriptions(c *gin.Context) {
	subs, err := h.PushSubRepo.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "subscriptions fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"subscriptions": subs,
		"total":         len(subs),
	})
}

// SyncPending 待回放的离线变更
func (h *Handler) SyncPending(c *gin.Context) {
	if h.Store == nil {
		respondError(c, response.CodeBadRequest, "offline store disabled", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	entries, err := h.Store.PendingSync(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "pending sync fetch failed", err)
		return
	}
	count, err := h.Store.PendingSyncCount()
	if err != nil {
		respondError(c, response.CodeInternal, "pending sync count failed", err)
		return
	}
	online := h.Monitor != nil && h.Monitor.Online()
	response.Success(c, gin.H{
		"entries": entries,
		"total":   count,
		"online":  online,
	})
}

// SyncDrain 手动触发离线队列回放
func (h *Handler) SyncDrain(c *gin.Context) {
	if h.Syncer == nil {
		respondError(c, response.CodeBadRequest, "offline sync disabled", nil)
		return
	}
	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOfflineDrain(queue.OfflineDrainPayload{Reason: "manual"}); err != nil {
			respondError(c, response.CodeInternal, "drain enqueue failed", err)
			return
		}
		response.SuccessWithMsg(c, "drain queued", gin.H{"queued": true})
		return
	}
	h.Syncer.Kick()
	response.SuccessWithMsg(c, "drain triggered", gin.H{"queued": false})
}
