package service

import (
	"fmt"
	"testing"

	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Favorite{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createServiceProduct(t *testing.T, db *gorm.DB, slug string, price int64, sale *int64) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: 1,
		Slug:       slug,
		Name:       "测试商品 " + slug,
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Season:     "all",
		InStock:    true,
		IsActive:   true,
	}
	if sale != nil {
		sp := models.NewMoneyFromDecimal(decimal.NewFromInt(*sale))
		product.SalePrice = &sp
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

// fakeSignal 可控的连通性信号
type fakeSignal struct {
	online    bool
	failures  int
	successes int
}

func (f *fakeSignal) Online() bool            { return f.online }
func (f *fakeSignal) ReportFailure(err error) { f.failures++; f.online = false }
func (f *fakeSignal) ReportSuccess()          { f.successes++; f.online = true }

var serviceStoreSeq int

func setupServiceStore(t *testing.T) *localstore.Store {
	t.Helper()
	serviceStoreSeq++
	store, err := localstore.Open(localstore.Options{
		DSN: fmt.Sprintf("file:service-test-%d?mode=memory&cache=shared", serviceStoreSeq),
	})
	if err != nil {
		t.Fatalf("open edge store failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newCartFixture(t *testing.T) (*CartService, *gorm.DB, *fakeSignal, *localstore.Store) {
	t.Helper()
	db := setupServiceDB(t)
	store := setupServiceStore(t)
	signal := &fakeSignal{online: true}
	svc := NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		store,
		signal,
	)
	return svc, db, signal, store
}
