package repository

import (
	"testing"

	"github.com/velo-shop/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupFavoriteRepositoryTest(t *testing.T) (*GormFavoriteRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Favorite{}, &models.Product{}); err != nil {
		t.Fatalf("migrate favorite/product failed: %v", err)
	}
	return NewFavoriteRepository(db), db
}

func TestFavoriteAddIsIdempotent(t *testing.T) {
	repo, db := setupFavoriteRepositoryTest(t)
	const userID, productID = 9001, 101

	if err := repo.Add(&models.Favorite{UserID: userID, ProductID: productID}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := repo.Add(&models.Favorite{UserID: userID, ProductID: productID}); err != nil {
		t.Fatalf("repeat add failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&count).Error; err != nil {
		t.Fatalf("count favorites failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("favorite count want 1 got %d", count)
	}
}

func TestFavoriteRemoveThenExists(t *testing.T) {
	repo, _ := setupFavoriteRepositoryTest(t)
	const userID, productID = 9002, 202

	if err := repo.Add(&models.Favorite{UserID: userID, ProductID: productID}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	exists, err := repo.Exists(userID, productID)
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Fatalf("favorite should exist after add")
	}

	if err := repo.Remove(userID, productID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	exists, err = repo.Exists(userID, productID)
	if err != nil {
		t.Fatalf("exists after remove failed: %v", err)
	}
	if exists {
		t.Fatalf("favorite should not exist after remove")
	}

	// 重复移除不报错
	if err := repo.Remove(userID, productID); err != nil {
		t.Fatalf("repeat remove failed: %v", err)
	}
}

func TestFavoriteListProductIDs(t *testing.T) {
	repo, _ := setupFavoriteRepositoryTest(t)
	const userID = 9003

	for _, pid := range []uint{11, 22, 33} {
		if err := repo.Add(&models.Favorite{UserID: userID, ProductID: pid}); err != nil {
			t.Fatalf("add product %d failed: %v", pid, err)
		}
	}

	ids, err := repo.ListProductIDs(userID)
	if err != nil {
		t.Fatalf("list product ids failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("id count want 3 got %d", len(ids))
	}
	got := make(map[uint]bool, len(ids))
	for _, id := range ids {
		got[id] = true
	}
	for _, pid := range []uint{11, 22, 33} {
		if !got[pid] {
			t.Fatalf("product id %d missing from list", pid)
		}
	}
}
