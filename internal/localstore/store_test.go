package localstore

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"

	"github.com/shopspring/decimal"
)

var storeSeq int

func setupStoreTest(t *testing.T) *Store {
	t.Helper()
	storeSeq++
	store, err := Open(Options{
		DSN:        fmt.Sprintf("file:edge-test-%d?mode=memory&cache=shared", storeSeq),
		StaleAfter: time.Hour,
	})
	if err != nil {
		t.Fatalf("open edge store failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func edgeProduct(id uint, slug string, price int64) models.Product {
	product := models.Product{
		Slug:    slug,
		Name:    "缓存商品 " + slug,
		Price:   models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Season:  constants.SeasonAll,
		InStock: true,
	}
	product.ID = id
	return product
}

func TestCacheProductsReplacesSnapshot(t *testing.T) {
	store := setupStoreTest(t)
	now := time.Now()

	first := []models.Product{edgeProduct(1, "old-bike", 100), edgeProduct(2, "old-scooter", 200)}
	if err := store.CacheProducts(first, now); err != nil {
		t.Fatalf("cache first snapshot failed: %v", err)
	}

	second := []models.Product{edgeProduct(3, "new-bike", 300)}
	if err := store.CacheProducts(second, now.Add(time.Minute)); err != nil {
		t.Fatalf("cache second snapshot failed: %v", err)
	}

	products, err := store.CachedProducts()
	if err != nil {
		t.Fatalf("read cached products failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("cached product count want 1 got %d", len(products))
	}
	if products[0].Slug != "new-bike" {
		t.Fatalf("cached slug want new-bike got %s", products[0].Slug)
	}
}

func TestCachedProductBySlugRoundTrip(t *testing.T) {
	store := setupStoreTest(t)

	if err := store.CacheProducts([]models.Product{edgeProduct(10, "mountain-bike", 2500)}, time.Now()); err != nil {
		t.Fatalf("cache products failed: %v", err)
	}

	product, err := store.CachedProductBySlug("mountain-bike")
	if err != nil {
		t.Fatalf("read by slug failed: %v", err)
	}
	if product == nil {
		t.Fatalf("cached product should be found")
	}
	if product.ID != 10 {
		t.Fatalf("product id want 10 got %d", product.ID)
	}
	if product.Price.String() != "2500.00" {
		t.Fatalf("price want 2500.00 got %s", product.Price.String())
	}

	missing, err := store.CachedProductBySlug("no-such-product")
	if err != nil {
		t.Fatalf("read missing slug failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing slug should return nil product")
	}
}

func TestIsStaleNeverRefreshedAndAfterTTL(t *testing.T) {
	store := setupStoreTest(t)
	// 刷新时间按秒存储，取整秒时刻让阈值断言精确
	now := time.Unix(time.Now().Unix(), 0)

	stale, err := store.IsStale(constants.MetaProductsCachedAt, now)
	if err != nil {
		t.Fatalf("stale check on empty store failed: %v", err)
	}
	if !stale {
		t.Fatalf("never-refreshed cache should be stale")
	}

	if err := store.CacheProducts([]models.Product{edgeProduct(1, "stale-check", 100)}, now); err != nil {
		t.Fatalf("cache products failed: %v", err)
	}

	stale, err = store.IsStale(constants.MetaProductsCachedAt, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("stale check within ttl failed: %v", err)
	}
	if stale {
		t.Fatalf("cache within ttl should not be stale")
	}

	// 恰好到达阈值还不算过期，超过才算
	stale, err = store.IsStale(constants.MetaProductsCachedAt, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("stale check at ttl boundary failed: %v", err)
	}
	if stale {
		t.Fatalf("cache exactly at ttl should not be stale yet")
	}

	stale, err = store.IsStale(constants.MetaProductsCachedAt, now.Add(time.Hour+time.Second))
	if err != nil {
		t.Fatalf("stale check past ttl failed: %v", err)
	}
	if !stale {
		t.Fatalf("cache past ttl should be stale")
	}
}

func TestSyncQueueFIFOAndRetryCounter(t *testing.T) {
	store := setupStoreTest(t)

	for i := 0; i < 3; i++ {
		if _, err := store.EnqueueSync(constants.SyncTypeCart, constants.SyncActionUpsert, map[string]interface{}{
			"product_id": i + 1,
			"quantity":   1,
		}); err != nil {
			t.Fatalf("enqueue entry %d failed: %v", i, err)
		}
	}

	entries, err := store.PendingSync(0)
	if err != nil {
		t.Fatalf("read pending entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("pending count want 3 got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ID <= entries[i-1].ID {
			t.Fatalf("entries should be ordered by id ascending")
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(entries[0].Payload), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload["product_id"].(float64) != 1 {
		t.Fatalf("first entry should carry product_id 1")
	}

	retries, err := store.IncrementSyncRetry(entries[0].ID)
	if err != nil {
		t.Fatalf("increment retry failed: %v", err)
	}
	if retries != 1 {
		t.Fatalf("retry count want 1 got %d", retries)
	}

	if err := store.RemoveSync(entries[0].ID); err != nil {
		t.Fatalf("remove entry failed: %v", err)
	}
	count, err := store.PendingSyncCount()
	if err != nil {
		t.Fatalf("count pending failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("pending count after remove want 2 got %d", count)
	}
}
