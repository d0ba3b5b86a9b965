package public

import (
	"errors"
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// FavoriteRequest 收藏请求
type FavoriteRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// FavoriteMergeRequest 本地收藏合并请求
type FavoriteMergeRequest struct {
	ProductIDs []uint `json:"product_ids"`
}

// GetFavorites 获取收藏列表
func (h *Handler) GetFavorites(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	favorites, err := h.FavoriteService.List(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "favorites fetch failed", err)
		return
	}
	response.Success(c, gin.H{"favorites": favorites})
}

// AddFavorite 添加收藏
func (h *Handler) AddFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.FavoriteService.Add(uid, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "favorite update failed", err)
		return
	}
	response.Success(c, gin.H{"added": true, "queued": result.Queued})
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	result, err := h.FavoriteService.Remove(uid, uint(productID))
	if err != nil {
		respondError(c, response.CodeInternal, "favorite update failed", err)
		return
	}
	response.Success(c, gin.H{"removed": true, "queued": result.Queued})
}

// ToggleFavorite 收藏状态翻转
func (h *Handler) ToggleFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	favored, result, err := h.FavoriteService.Toggle(uid, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "favorite update failed", err)
		return
	}
	response.Success(c, gin.H{"favored": favored, "queued": result.Queued})
}

// MergeFavorites 登录后合并本地收藏，幂等
func (h *Handler) MergeFavorites(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req FavoriteMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.FavoriteService.MergeLocal(uid, req.ProductIDs); err != nil {
		respondError(c, response.CodeInternal, "favorite merge failed", err)
		return
	}
	ids, err := h.FavoriteService.ProductIDs(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "favorites fetch failed", err)
		return
	}
	response.Success(c, gin.H{"product_ids": ids})
}
