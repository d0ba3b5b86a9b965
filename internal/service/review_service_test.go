package service

import (
	"testing"

	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"

	"gorm.io/gorm"
)

func newReviewFixture(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewProductRepository(db),
	)
	return svc, db
}

func TestReviewRatingBounds(t *testing.T) {
	svc, db := newReviewFixture(t)
	product := createServiceProduct(t, db, "review-bounds-bike", 100, nil)

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Create(ReviewInput{ProductID: product.ID, Rating: rating, Text: "bad rating"})
		if err != ErrReviewRatingInvalid {
			t.Fatalf("rating %d want ErrReviewRatingInvalid got %v", rating, err)
		}
	}

	review, err := svc.Create(ReviewInput{ProductID: product.ID, Rating: 5, Text: "great bike"})
	if err != nil {
		t.Fatalf("valid review rejected: %v", err)
	}
	if review.Approved {
		t.Fatalf("new review should await moderation")
	}
	if review.Author != "Guest" {
		t.Fatalf("empty author should default to Guest, got %s", review.Author)
	}
}

func TestReviewApproveRefreshesProductAggregate(t *testing.T) {
	svc, db := newReviewFixture(t)
	product := createServiceProduct(t, db, "review-aggregate-bike", 100, nil)

	first, err := svc.Create(ReviewInput{ProductID: product.ID, Rating: 5, Text: "excellent"})
	if err != nil {
		t.Fatalf("create first review failed: %v", err)
	}
	second, err := svc.Create(ReviewInput{ProductID: product.ID, Rating: 3, Text: "ok"})
	if err != nil {
		t.Fatalf("create second review failed: %v", err)
	}

	// 未审核评价不计入聚合
	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.RatingCount != 0 {
		t.Fatalf("unapproved reviews should not count, got %d", got.RatingCount)
	}

	if _, err := svc.Approve(first.ID); err != nil {
		t.Fatalf("approve first failed: %v", err)
	}
	if _, err := svc.Approve(second.ID); err != nil {
		t.Fatalf("approve second failed: %v", err)
	}

	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.RatingCount != 2 {
		t.Fatalf("rating count want 2 got %d", got.RatingCount)
	}
	if got.Rating != 4 {
		t.Fatalf("rating average want 4 got %v", got.Rating)
	}

	// 删除已审核评价后聚合回落
	if err := svc.Delete(second.ID); err != nil {
		t.Fatalf("delete review failed: %v", err)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.RatingCount != 1 || got.Rating != 5 {
		t.Fatalf("aggregate after delete want 5/1 got %v/%d", got.Rating, got.RatingCount)
	}
}
