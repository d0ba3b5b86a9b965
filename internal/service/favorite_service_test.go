package service

import (
	"testing"

	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"

	"gorm.io/gorm"
)

func newFavoriteFixture(t *testing.T) (*FavoriteService, *gorm.DB, *fakeSignal) {
	t.Helper()
	db := setupServiceDB(t)
	store := setupServiceStore(t)
	signal := &fakeSignal{online: true}
	svc := NewFavoriteService(
		repository.NewFavoriteRepository(db),
		repository.NewProductRepository(db),
		store,
		signal,
	)
	return svc, db, signal
}

func TestFavoriteMergeLocalIsIdempotent(t *testing.T) {
	svc, db, _ := newFavoriteFixture(t)
	const userID = 701

	first := createServiceProduct(t, db, "merge-fav-bike", 1500, nil)
	second := createServiceProduct(t, db, "merge-fav-scooter", 2500, nil)
	// 未知商品与零值被跳过，不中断合并
	local := []uint{first.ID, 99999, second.ID, first.ID, 0}

	if err := svc.MergeLocal(userID, local); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	// 重复合并同一份本地收藏，结果集不变
	if err := svc.MergeLocal(userID, local); err != nil {
		t.Fatalf("repeat merge failed: %v", err)
	}

	ids, err := svc.ProductIDs(userID)
	if err != nil {
		t.Fatalf("list product ids failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("favorite count want 2 got %d (%v)", len(ids), ids)
	}
	seen := map[uint]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Fatalf("merged set missing products: %v", ids)
	}
}

func TestFavoriteToggleFlipsState(t *testing.T) {
	svc, db, _ := newFavoriteFixture(t)
	const userID = 702
	product := createServiceProduct(t, db, "toggle-fav-helmet", 500, nil)

	added, _, err := svc.Toggle(userID, product.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !added {
		t.Fatal("first toggle should add favorite")
	}

	added, _, err = svc.Toggle(userID, product.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if added {
		t.Fatal("second toggle should remove favorite")
	}

	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count favorites failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("favorite count want 0 got %d", count)
	}
}

func TestFavoriteAddOfflineQueuesChange(t *testing.T) {
	svc, db, signal := newFavoriteFixture(t)
	const userID = 703
	product := createServiceProduct(t, db, "offline-fav-lock", 800, nil)
	signal.online = false

	result, err := svc.Add(userID, product.ID)
	if err != nil {
		t.Fatalf("offline add failed: %v", err)
	}
	if !result.Queued {
		t.Fatal("offline add should report queued")
	}

	// 离线变更只进同步队列，不落远端
	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count favorites failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("offline add should not write remote row, got %d", count)
	}
}
