package admin

import (
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 后台商品写入请求
type ProductRequest struct {
	CategoryID  uint          `json:"category_id" binding:"required"`
	Slug        string        `json:"slug" binding:"required"`
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Price       models.Money  `json:"price"`
	SalePrice   *models.Money `json:"sale_price"`
	Images      []string      `json:"images"`
	InStock     *bool         `json:"in_stock"`
	StockQty    *int          `json:"stock_qty"`
	Season      string        `json:"season"`
	IsFeatured  *bool         `json:"is_featured"`
	IsNew       *bool         `json:"is_new"`
	Specs       models.JSON   `json:"specs"`
	IsActive    *bool         `json:"is_active"`
	SortOrder   *int          `json:"sort_order"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:  r.CategoryID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
		Images:      r.Images,
		InStock:     r.InStock,
		StockQty:    r.StockQty,
		Season:      r.Season,
		IsFeatured:  r.IsFeatured,
		IsNew:       r.IsNew,
		Specs:       r.Specs,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

var productAdminErrorRules = []mappedHandlerError{
	{target: service.ErrProductInputInvalid, code: response.CodeBadRequest, msg: "product input invalid"},
	{target: service.ErrSalePriceInvalid, code: response.CodeBadRequest, msg: "sale price must be lower than price"},
	{target: service.ErrProductSlugExists, code: response.CodeConflict, msg: "product slug already exists"},
	{target: service.ErrCategoryNotFound, code: response.CodeBadRequest, msg: "category not found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
}

// ListProducts 后台商品列表（含下架）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductAdminService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: c.Query("category_id"),
		Season:     c.Query("season"),
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "products fetch failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 后台商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	product, err := h.ProductAdminService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, "product fetch failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductAdminService.Create(req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, "product create failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductAdminService.Update(id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, "product update failed")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.ProductAdminService.Delete(id); err != nil {
		respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, "product delete failed")
		return
	}
	response.SuccessWithMsg(c, "product deleted", nil)
}
