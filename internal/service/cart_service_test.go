package service

import (
	"testing"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"
)

func TestCartSetItemZeroQuantityRemovesLine(t *testing.T) {
	svc, db, _, _ := newCartFixture(t)
	product := createServiceProduct(t, db, "cart-zero-qty-bike", 1000, nil)
	const userID = 501

	if _, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("set item failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("cart line count want 1 got %d", count)
	}

	// 数量归零等价于删除该行
	if _, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: product.ID, Quantity: 0}); err != nil {
		t.Fatalf("set zero quantity failed: %v", err)
	}
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("zero quantity should remove line, got %d lines", count)
	}

	// 负数同样删除
	if _, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: product.ID, Quantity: 3}); err != nil {
		t.Fatalf("re-add item failed: %v", err)
	}
	if _, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: product.ID, Quantity: -1}); err != nil {
		t.Fatalf("set negative quantity failed: %v", err)
	}
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("negative quantity should remove line, got %d lines", count)
	}
}

func TestCartTotalUsesEffectivePrice(t *testing.T) {
	svc, db, _, _ := newCartFixture(t)
	sale := int64(800)
	discounted := createServiceProduct(t, db, "cart-total-discounted", 1000, &sale)
	fullPrice := createServiceProduct(t, db, "cart-total-full", 500, nil)
	const userID = 502

	if _, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: discounted.ID, Quantity: 2}); err != nil {
		t.Fatalf("set discounted failed: %v", err)
	}
	if _, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: fullPrice.ID, Quantity: 1}); err != nil {
		t.Fatalf("set full price failed: %v", err)
	}

	detail, err := svc.Get(userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if detail.TotalQty != 3 {
		t.Fatalf("total qty want 3 got %d", detail.TotalQty)
	}
	// 2×800 促销价 + 1×500 原价
	if detail.TotalPrice.String() != "2100.00" {
		t.Fatalf("total price want 2100.00 got %s", detail.TotalPrice.String())
	}
}

func TestCartSetItemOfflineQueuesChange(t *testing.T) {
	svc, db, signal, store := newCartFixture(t)
	product := createServiceProduct(t, db, "cart-offline-scooter", 700, nil)
	signal.online = false
	const userID = 503

	result, err := svc.SetItem(SetCartItemInput{UserID: userID, ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("offline set item failed: %v", err)
	}
	if !result.Queued {
		t.Fatalf("offline mutation should be queued")
	}

	// 主库未写入，变更落在同步队列
	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("offline mutation should not touch primary store")
	}
	entries, err := store.PendingSync(0)
	if err != nil {
		t.Fatalf("read pending sync failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("pending sync count want 1 got %d", len(entries))
	}
	if entries[0].Type != constants.SyncTypeCart || entries[0].Action != constants.SyncActionUpsert {
		t.Fatalf("queued entry mismatch: type=%s action=%s", entries[0].Type, entries[0].Action)
	}
}

func TestCartInactiveProductRejected(t *testing.T) {
	svc, db, _, _ := newCartFixture(t)
	product := createServiceProduct(t, db, "cart-inactive-bike", 900, nil)
	if err := db.Model(product).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	_, err := svc.SetItem(SetCartItemInput{UserID: 504, ProductID: product.ID, Quantity: 1})
	if err != ErrProductNotFound {
		t.Fatalf("inactive product want ErrProductNotFound got %v", err)
	}
}
