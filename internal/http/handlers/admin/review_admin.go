package admin

import (
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/repository"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

var reviewAdminErrorRules = []mappedHandlerError{
	{target: service.ErrReviewNotFound, code: response.CodeNotFound, msg: "review not found"},
}

// ListReviews 后台评价列表（含待审核）
func (h *Handler) ListReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 32)

	reviews, total, err := h.ReviewService.ListAdmin(repository.ReviewListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductID:    uint(productID),
		OnlyApproved: c.Query("approved") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "reviews fetch failed", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}

// ApproveReview 审核通过评价并刷新商品评分
func (h *Handler) ApproveReview(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	review, err := h.ReviewService.Approve(id)
	if err != nil {
		respondWithMappedError(c, err, reviewAdminErrorRules, response.CodeInternal, "review approve failed")
		return
	}
	response.Success(c, review)
}

// DeleteReview 删除评价并刷新商品评分
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.ReviewService.Delete(id); err != nil {
		respondWithMappedError(c, err, reviewAdminErrorRules, response.CodeInternal, "review delete failed")
		return
	}
	response.SuccessWithMsg(c, "review deleted", nil)
}
