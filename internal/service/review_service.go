package service

import (
	"strings"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// ReviewInput 评价提交输入
type ReviewInput struct {
	ProductID uint
	UserID    uint
	Author    string
	Rating    int
	Text      string
}

// ReviewService 评价服务。
// 评价先进入待审核状态，审核通过后计入商品评分聚合。
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// ListApproved 商品的已审核评价
func (s *ReviewService) ListApproved(productID uint, page, pageSize int) ([]models.Review, int64, error) {
	return s.reviewRepo.List(repository.ReviewListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductID:    productID,
		OnlyApproved: true,
	})
}

// ListAdmin 管理端评价列表（含未审核）
func (s *ReviewService) ListAdmin(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.List(filter)
}

// Create 提交评价
func (s *ReviewService) Create(input ReviewInput) (*models.Review, error) {
	if input.Rating < constants.ReviewRatingMin || input.Rating > constants.ReviewRatingMax {
		return nil, ErrReviewRatingInvalid
	}
	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = "Guest"
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	review := &models.Review{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Author:    author,
		Rating:    input.Rating,
		Text:      strings.TrimSpace(input.Text),
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Approve 审核通过并刷新商品评分聚合
func (s *ReviewService) Approve(reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	if !review.Approved {
		review.Approved = true
		if err := s.reviewRepo.Update(review); err != nil {
			return nil, err
		}
		if err := s.refreshProductRating(review.ProductID); err != nil {
			logger.Warnw("review_rating_refresh_failed", "product_id", review.ProductID, "error", err)
		}
	}
	return review, nil
}

// Delete 删除评价并刷新商品评分聚合
func (s *ReviewService) Delete(reviewID uint) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}
	if review.Approved {
		if err := s.refreshProductRating(review.ProductID); err != nil {
			logger.Warnw("review_rating_refresh_failed", "product_id", review.ProductID, "error", err)
		}
	}
	return nil
}

func (s *ReviewService) refreshProductRating(productID uint) error {
	avg, count, err := s.reviewRepo.ApprovedStats(productID)
	if err != nil {
		return err
	}
	return s.productRepo.UpdateRating(productID, avg, int(count))
}
