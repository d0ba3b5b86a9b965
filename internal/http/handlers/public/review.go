package public

import (
	"errors"
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewRequest 商品评价请求
type ReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Author    string `json:"author"`
	Rating    int    `json:"rating" binding:"required"`
	Text      string `json:"text"`
}

// GetReviews 商品已审核评价列表
func (h *Handler) GetReviews(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product_id is required", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	reviews, total, err := h.ReviewService.ListApproved(uint(productID), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "reviews fetch failed", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}

// CreateReview 提交评价，进入待审核状态
func (h *Handler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input := service.ReviewInput{
		ProductID: req.ProductID,
		Author:    req.Author,
		Rating:    req.Rating,
		Text:      req.Text,
	}
	if uid, exists := c.Get("user_id"); exists {
		if id, ok := uid.(uint); ok {
			input.UserID = id
		}
	}

	review, err := h.ReviewService.Create(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewRatingInvalid):
			respondError(c, response.CodeBadRequest, "rating out of range", nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "review submit failed", err)
		}
		return
	}
	response.SuccessWithMsg(c, "review pending approval", review)
}
