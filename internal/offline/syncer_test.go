package offline

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/models"

	"github.com/shopspring/decimal"
)

var syncerStoreSeq int

func setupSyncerStore(t *testing.T) *localstore.Store {
	t.Helper()
	syncerStoreSeq++
	store, err := localstore.Open(localstore.Options{
		DSN:        fmt.Sprintf("file:syncer-test-%d?mode=memory&cache=shared", syncerStoreSeq),
		StaleAfter: time.Hour,
	})
	if err != nil {
		t.Fatalf("open edge store failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type fakeCatalogSource struct {
	products   []models.Product
	categories []models.Category
	err        error
}

func (f *fakeCatalogSource) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalogSource) Categories(ctx context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

type fakeApplier struct {
	applied []uint
	fail    map[uint]error
}

func (f *fakeApplier) Apply(ctx context.Context, entry localstore.SyncEntry) error {
	if err, ok := f.fail[entry.ID]; ok {
		return err
	}
	f.applied = append(f.applied, entry.ID)
	return nil
}

func TestSyncerDrainReplaysInOrderAndRemovesEntries(t *testing.T) {
	store := setupSyncerStore(t)
	applier := &fakeApplier{}
	syncer := NewSyncer(store, nil, &fakeCatalogSource{}, applier, SyncerOptions{MaxRetries: 3})

	var ids []uint
	for i := 0; i < 3; i++ {
		entry, err := store.EnqueueSync(constants.SyncTypeCart, constants.SyncActionUpsert, CartSyncPayload{
			UserID: 1, ProductID: uint(i + 1), Quantity: 1,
		})
		if err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
		ids = append(ids, entry.ID)
	}

	if err := syncer.Drain(context.Background()); err != nil {
		t.Fatalf("drain failed: %v", err)
	}

	if len(applier.applied) != 3 {
		t.Fatalf("applied count want 3 got %d", len(applier.applied))
	}
	for i, id := range ids {
		if applier.applied[i] != id {
			t.Fatalf("replay order position %d want id %d got %d", i, id, applier.applied[i])
		}
	}

	count, err := store.PendingSyncCount()
	if err != nil {
		t.Fatalf("count pending failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("pending count after drain want 0 got %d", count)
	}
}

func TestSyncerDrainStopsOnNetworkError(t *testing.T) {
	store := setupSyncerStore(t)

	first, err := store.EnqueueSync(constants.SyncTypeFavorite, constants.SyncActionCreate, FavoriteSyncPayload{UserID: 1, ProductID: 1})
	if err != nil {
		t.Fatalf("enqueue first failed: %v", err)
	}
	if _, err := store.EnqueueSync(constants.SyncTypeFavorite, constants.SyncActionCreate, FavoriteSyncPayload{UserID: 1, ProductID: 2}); err != nil {
		t.Fatalf("enqueue second failed: %v", err)
	}

	applier := &fakeApplier{fail: map[uint]error{first.ID: Classify("replay", syscall.ECONNREFUSED)}}
	syncer := NewSyncer(store, nil, &fakeCatalogSource{}, applier, SyncerOptions{MaxRetries: 3})

	drainErr := syncer.Drain(context.Background())
	if drainErr == nil {
		t.Fatalf("drain should surface the network error")
	}
	if !IsNetError(drainErr) {
		t.Fatalf("drain error should be a network error")
	}

	// 网络错误不消耗重试计数，队列完整保留
	count, err := store.PendingSyncCount()
	if err != nil {
		t.Fatalf("count pending failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("pending count want 2 got %d", count)
	}
	entries, err := store.PendingSync(1)
	if err != nil {
		t.Fatalf("read pending failed: %v", err)
	}
	if entries[0].Retries != 0 {
		t.Fatalf("network failure should not increment retries, got %d", entries[0].Retries)
	}
}

func TestSyncerDrainDropsEntryAfterMaxRetries(t *testing.T) {
	store := setupSyncerStore(t)

	bad, err := store.EnqueueSync(constants.SyncTypeCart, constants.SyncActionRemove, CartSyncPayload{UserID: 2, ProductID: 9})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	good, err := store.EnqueueSync(constants.SyncTypeCart, constants.SyncActionUpsert, CartSyncPayload{UserID: 2, ProductID: 10, Quantity: 1})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	applier := &fakeApplier{fail: map[uint]error{bad.ID: errors.New("product no longer exists")}}
	syncer := NewSyncer(store, nil, &fakeCatalogSource{}, applier, SyncerOptions{MaxRetries: 2})

	// 第一次：坏条目计 1 次重试，好条目回放成功
	if err := syncer.Drain(context.Background()); err != nil {
		t.Fatalf("first drain failed: %v", err)
	}
	if len(applier.applied) != 1 || applier.applied[0] != good.ID {
		t.Fatalf("good entry should replay despite bad entry")
	}

	// 第二次：坏条目达到上限被丢弃
	if err := syncer.Drain(context.Background()); err != nil {
		t.Fatalf("second drain failed: %v", err)
	}
	count, err := store.PendingSyncCount()
	if err != nil {
		t.Fatalf("count pending failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("bad entry should be dropped after max retries, pending=%d", count)
	}
}

func TestSyncerRefreshPopulatesEdgeCache(t *testing.T) {
	store := setupSyncerStore(t)
	product := models.Product{
		Slug:  "refresh-bike",
		Name:  "刷新测试",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(999)),
	}
	product.ID = 77
	category := models.Category{Slug: "bikes", Name: "自行车"}
	category.ID = 5

	source := &fakeCatalogSource{
		products:   []models.Product{product},
		categories: []models.Category{category},
	}
	syncer := NewSyncer(store, nil, source, &fakeApplier{}, SyncerOptions{})

	if err := syncer.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	products, err := store.CachedProducts()
	if err != nil {
		t.Fatalf("read cached products failed: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "refresh-bike" {
		t.Fatalf("cached products mismatch: %+v", products)
	}
	categories, err := store.CachedCategories()
	if err != nil {
		t.Fatalf("read cached categories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Slug != "bikes" {
		t.Fatalf("cached categories mismatch: %+v", categories)
	}

	stale, err := store.IsStale(constants.MetaProductsCachedAt, time.Now())
	if err != nil {
		t.Fatalf("stale check failed: %v", err)
	}
	if stale {
		t.Fatalf("freshly refreshed cache should not be stale")
	}
}

func TestSyncerRefreshReportsNetworkFailure(t *testing.T) {
	store := setupSyncerStore(t)
	monitor := NewMonitor(nil, time.Minute)
	source := &fakeCatalogSource{err: syscall.ECONNREFUSED}
	syncer := NewSyncer(store, monitor, source, &fakeApplier{}, SyncerOptions{})

	err := syncer.Refresh(context.Background())
	if err == nil {
		t.Fatalf("refresh should fail when catalog source is unreachable")
	}
	if !IsNetError(err) {
		t.Fatalf("refresh failure should classify as network error")
	}
	if monitor.Online() {
		t.Fatalf("monitor should flip offline after network failure")
	}
}
