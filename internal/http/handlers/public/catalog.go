package public

import (
	"strconv"
	"strings"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

const fromCacheHeader = "X-From-Cache"

// GetProducts 获取商品列表（支持筛选、排序与离线降级读）
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	input := service.ProductListInput{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		Season:     strings.TrimSpace(c.Query("season")),
		Search:     strings.TrimSpace(c.Query("search")),
		PriceMin:   strings.TrimSpace(c.Query("price_min")),
		PriceMax:   strings.TrimSpace(c.Query("price_max")),
		Sort:       strings.TrimSpace(c.Query("sort")),
	}
	if raw := c.Query("featured"); raw != "" {
		featured := raw == "true" || raw == "1"
		input.Featured = &featured
	}
	if raw := c.Query("new"); raw != "" {
		isNew := raw == "true" || raw == "1"
		input.New = &isNew
	}
	if raw := c.Query("in_stock"); raw != "" {
		inStock := raw == "true" || raw == "1"
		input.InStock = &inStock
	}

	result, err := h.ProductService.List(input)
	if err != nil {
		respondError(c, response.CodeServiceUnavailable, "catalog unavailable", err)
		return
	}
	if result.FromCache {
		c.Writer.Header().Set(fromCacheHeader, "1")
	}

	pagination := response.NewPagination(page, pageSize, result.Total)
	response.SuccessWithPage(c, result.Products, pagination)
}

// GetProductBySlug 根据 slug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "slug is required", nil)
		return
	}

	product, fromCache, err := h.ProductService.GetBySlug(slug)
	if err != nil {
		respondError(c, response.CodeServiceUnavailable, "catalog unavailable", err)
		return
	}
	if product == nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}
	if fromCache {
		c.Writer.Header().Set(fromCacheHeader, "1")
	}
	response.Success(c, product)
}

// GetCategories 获取分类列表（含商品数）
func (h *Handler) GetCategories(c *gin.Context) {
	result, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeServiceUnavailable, "catalog unavailable", err)
		return
	}
	if result.FromCache {
		c.Writer.Header().Set(fromCacheHeader, "1")
	}
	response.Success(c, gin.H{"categories": result.Categories})
}

// GetPublicSettings 获取公开站点设置
func (h *Handler) GetPublicSettings(c *gin.Context) {
	settings, err := h.SettingService.PublicSettings()
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, settings)
}
