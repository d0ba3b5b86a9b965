package repository

import (
	"testing"
	"time"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate order/order_item failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func createTestOrder(t *testing.T, repo *GormOrderRepository, orderNo string, userID uint, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:        orderNo,
		UserID:         userID,
		CustomerName:   "测试买家",
		Phone:          "+375291112233",
		DeliveryMethod: constants.DeliveryMethodPickup,
		Status:         status,
		TotalAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1500)),
	}
	items := []models.OrderItem{
		{ProductID: 1, Name: "城市自行车", UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1000)), Quantity: 1},
		{ProductID: 2, Name: "头盔", UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(250)), Quantity: 2},
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderCreatePersistsItemsInOneTransaction(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "VS-20260831-000001", 1, constants.OrderStatusNew)

	got, err := repo.GetByOrderNo(order.OrderNo)
	if err != nil {
		t.Fatalf("get by order no failed: %v", err)
	}
	if got == nil {
		t.Fatalf("order should be found after create")
	}
	if len(got.Items) != 2 {
		t.Fatalf("item count want 2 got %d", len(got.Items))
	}
	for _, item := range got.Items {
		if item.OrderID != order.ID {
			t.Fatalf("item order id want %d got %d", order.ID, item.OrderID)
		}
	}

	var itemCount int64
	if err := db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if itemCount != 2 {
		t.Fatalf("persisted item count want 2 got %d", itemCount)
	}
}

func TestOrderGetByIDAndUserScopesOwnership(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "VS-20260831-000002", 42, constants.OrderStatusNew)

	got, err := repo.GetByIDAndUser(order.ID, 42)
	if err != nil {
		t.Fatalf("get own order failed: %v", err)
	}
	if got == nil {
		t.Fatalf("owner should see own order")
	}

	got, err = repo.GetByIDAndUser(order.ID, 43)
	if err != nil {
		t.Fatalf("get foreign order failed: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign user should not see order")
	}
}

func TestOrderUpdateStatusWithTimestamps(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "VS-20260831-000003", 7, constants.OrderStatusProcessing)

	now := time.Now()
	if err := repo.UpdateStatus(order.ID, constants.OrderStatusConfirmed, map[string]interface{}{
		"confirmed_at": &now,
	}); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	var got models.Order
	if err := db.First(&got, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want %s got %s", constants.OrderStatusConfirmed, got.Status)
	}
	if got.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}
}

func TestOrderListAdminFiltersByStatusAndSearch(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	createTestOrder(t, repo, "VS-20260831-100001", 1, constants.OrderStatusNew)
	createTestOrder(t, repo, "VS-20260831-100002", 2, constants.OrderStatusCompleted)
	createTestOrder(t, repo, "VS-20260831-100003", 3, constants.OrderStatusNew)

	orders, total, err := repo.ListAdmin(OrderListFilter{
		Page:     1,
		PageSize: 50,
		Status:   constants.OrderStatusNew,
		Search:   "VS-20260831-1000",
	})
	if err != nil {
		t.Fatalf("list admin orders failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total want 2 got %d", total)
	}
	for _, order := range orders {
		if order.Status != constants.OrderStatusNew {
			t.Fatalf("listed order status want %s got %s", constants.OrderStatusNew, order.Status)
		}
	}
}
