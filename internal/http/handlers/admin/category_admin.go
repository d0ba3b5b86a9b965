package admin

import (
	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 后台分类写入请求
type CategoryRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Slug:        r.Slug,
		Name:        r.Name,
		Icon:        r.Icon,
		Description: r.Description,
		SortOrder:   r.SortOrder,
	}
}

var categoryAdminErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryInputInvalid, code: response.CodeBadRequest, msg: "category input invalid"},
	{target: service.ErrCategorySlugExists, code: response.CodeConflict, msg: "category slug already exists"},
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, msg: "category not found"},
	{target: service.ErrCategoryNotEmpty, code: response.CodeBadRequest, msg: "category still has products"},
}

// ListCategories 后台分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	result, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "categories fetch failed", err)
		return
	}
	response.Success(c, gin.H{"categories": result.Categories})
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondWithMappedError(c, err, categoryAdminErrorRules, response.CodeInternal, "category create failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, categoryAdminErrorRules, response.CodeInternal, "category update failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（仍挂商品时拒绝）
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondWithMappedError(c, err, categoryAdminErrorRules, response.CodeInternal, "category delete failed")
		return
	}
	response.SuccessWithMsg(c, "category deleted", nil)
}
