package public

import (
	"errors"
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CompareRequest 对比清单请求
type CompareRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetCompare 获取对比清单
func (h *Handler) GetCompare(c *gin.Context) {
	sessionID, ok := compareSessionID(c)
	if !ok {
		return
	}

	detail, err := h.CompareService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, response.CodeInternal, "compare fetch failed", err)
		return
	}
	response.Success(c, detail)
}

// AddCompare 添加对比项，超出容量返回错误
func (h *Handler) AddCompare(c *gin.Context) {
	sessionID, ok := compareSessionID(c)
	if !ok {
		return
	}
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	detail, err := h.CompareService.Add(c.Request.Context(), sessionID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompareLimitReached):
			respondError(c, response.CodeBadRequest, "compare list is full", nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "compare update failed", err)
		}
		return
	}
	response.Success(c, detail)
}

// RemoveCompare 移除对比项
func (h *Handler) RemoveCompare(c *gin.Context) {
	sessionID, ok := compareSessionID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	detail, err := h.CompareService.Remove(c.Request.Context(), sessionID, uint(productID))
	if err != nil {
		respondError(c, response.CodeInternal, "compare update failed", err)
		return
	}
	response.Success(c, detail)
}

// ClearCompare 清空对比清单
func (h *Handler) ClearCompare(c *gin.Context) {
	sessionID, ok := compareSessionID(c)
	if !ok {
		return
	}
	if err := h.CompareService.Clear(c.Request.Context(), sessionID); err != nil {
		respondError(c, response.CodeInternal, "compare update failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
