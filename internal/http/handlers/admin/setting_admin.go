package admin

import (
	"errors"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingRequest 站点设置写入请求
type SettingRequest struct {
	Key   string      `json:"key" binding:"required"`
	Value models.JSON `json:"value" binding:"required"`
}

// ListSettings 站点设置列表
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.SettingService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, gin.H{"settings": settings})
}

// UpsertSetting 写入站点设置
func (h *Handler) UpsertSetting(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	setting, err := h.SettingService.Upsert(req.Key, req.Value)
	if err != nil {
		respondError(c, response.CodeInternal, "setting save failed", err)
		return
	}
	response.Success(c, setting)
}

// DeleteSetting 删除站点设置
func (h *Handler) DeleteSetting(c *gin.Context) {
	key := c.Param("key")
	if err := h.SettingService.Delete(key); err != nil {
		if errors.Is(err, service.ErrSettingNotFound) {
			respondError(c, response.CodeNotFound, "setting not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "setting delete failed", err)
		return
	}
	response.SuccessWithMsg(c, "setting deleted", nil)
}
