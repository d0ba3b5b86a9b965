package service

import (
	"strings"
	"testing"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"

	"gorm.io/gorm"
)

func newOrderFixture(t *testing.T) (*OrderService, *gorm.DB, *fakeSignal, *localstore.Store) {
	t.Helper()
	db := setupServiceDB(t)
	store := setupServiceStore(t)
	signal := &fakeSignal{online: true}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		nil,
		store,
		signal,
		"VS",
	)
	return svc, db, signal, store
}

func TestCheckoutCreatesOrderWithSnapshotsAndTotal(t *testing.T) {
	svc, db, _, _ := newOrderFixture(t)
	sale := int64(1800)
	discounted := createServiceProduct(t, db, "checkout-discounted-bike", 2000, &sale)
	helmet := createServiceProduct(t, db, "checkout-helmet", 150, nil)

	result, err := svc.Checkout(CheckoutInput{
		UserID:         601,
		CustomerName:   "Ivan",
		Phone:          "+375 29 111-22-33",
		DeliveryMethod: constants.DeliveryMethodPickup,
		Items: []CheckoutItem{
			{ProductID: discounted.ID, Quantity: 1},
			{ProductID: helmet.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if result.Queued {
		t.Fatalf("online checkout should not queue")
	}
	order := result.Order
	if order.Status != constants.OrderStatusNew {
		t.Fatalf("new order status want %s got %s", constants.OrderStatusNew, order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, "VS-") {
		t.Fatalf("order no should carry prefix, got %s", order.OrderNo)
	}
	// 1×1800 促销价 + 2×150
	if order.TotalAmount.String() != "2100.00" {
		t.Fatalf("total want 2100.00 got %s", order.TotalAmount.String())
	}
	if len(order.Items) != 2 {
		t.Fatalf("item count want 2 got %d", len(order.Items))
	}
	for _, item := range order.Items {
		if item.Name == "" {
			t.Fatalf("order item should snapshot product name")
		}
	}

	// 商品改价不影响已建订单快照
	if err := db.Model(discounted).Update("price", 9999).Error; err != nil {
		t.Fatalf("reprice product failed: %v", err)
	}
	reloaded, err := svc.GetAdmin(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.TotalAmount.String() != "2100.00" {
		t.Fatalf("snapshot total should not change, got %s", reloaded.TotalAmount.String())
	}
}

func TestCheckoutValidatesCustomerInfo(t *testing.T) {
	svc, db, _, _ := newOrderFixture(t)
	product := createServiceProduct(t, db, "checkout-validate-bike", 500, nil)
	items := []CheckoutItem{{ProductID: product.ID, Quantity: 1}}

	cases := []struct {
		name  string
		input CheckoutInput
	}{
		{"missing name", CheckoutInput{Phone: "+375291112233", DeliveryMethod: constants.DeliveryMethodPickup, Items: items}},
		{"missing phone", CheckoutInput{CustomerName: "Ivan", DeliveryMethod: constants.DeliveryMethodPickup, Items: items}},
		{"courier without address", CheckoutInput{CustomerName: "Ivan", Phone: "+375291112233", DeliveryMethod: constants.DeliveryMethodCourier, Items: items}},
		{"unknown delivery", CheckoutInput{CustomerName: "Ivan", Phone: "+375291112233", DeliveryMethod: "teleport", Items: items}},
	}
	for _, tc := range cases {
		if _, err := svc.Checkout(tc.input); err != ErrCustomerInfoInvalid {
			t.Fatalf("%s: want ErrCustomerInfoInvalid got %v", tc.name, err)
		}
	}
}

func TestCheckoutOfflineQueuesOrder(t *testing.T) {
	svc, db, signal, store := newOrderFixture(t)
	product := createServiceProduct(t, db, "checkout-offline-bike", 1200, nil)
	signal.online = false

	result, err := svc.Checkout(CheckoutInput{
		UserID:         602,
		CustomerName:   "Olga",
		Phone:          "+375291112244",
		DeliveryMethod: constants.DeliveryMethodPickup,
		Items:          []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("offline checkout failed: %v", err)
	}
	if !result.Queued {
		t.Fatalf("offline checkout should queue")
	}

	var count int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", 602).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("offline checkout should not create order in primary store")
	}
	entries, err := store.PendingSync(0)
	if err != nil {
		t.Fatalf("read pending sync failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("pending sync want 1 entry got %d", len(entries))
	}
	entry := entries[0]
	if entry.Type != constants.SyncTypeOrder || entry.Action != constants.SyncActionCreate {
		t.Fatalf("sync entry want order/create got %s/%s", entry.Type, entry.Action)
	}
	if entry.Retries != 0 {
		t.Fatalf("fresh sync entry retries want 0 got %d", entry.Retries)
	}
}

func TestOrderStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{constants.OrderStatusNew, constants.OrderStatusProcessing, true},
		{constants.OrderStatusNew, constants.OrderStatusCanceled, true},
		{constants.OrderStatusNew, constants.OrderStatusCompleted, false},
		{constants.OrderStatusProcessing, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusProcessing, constants.OrderStatusNew, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusCompleted, true},
		{constants.OrderStatusCompleted, constants.OrderStatusCanceled, false},
		{constants.OrderStatusCanceled, constants.OrderStatusNew, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("transition %s→%s want %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestUpdateStatusRejectsInvalidTransitionAndStampsTimestamps(t *testing.T) {
	svc, db, _, _ := newOrderFixture(t)
	product := createServiceProduct(t, db, "status-flow-bike", 300, nil)

	result, err := svc.Checkout(CheckoutInput{
		CustomerName:   "Pavel",
		Phone:          "+375291112255",
		DeliveryMethod: constants.DeliveryMethodPickup,
		Items:          []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	orderID := result.Order.ID

	if _, err := svc.UpdateStatus(orderID, constants.OrderStatusCompleted); err != ErrOrderStatusInvalid {
		t.Fatalf("new→completed want ErrOrderStatusInvalid got %v", err)
	}

	if _, err := svc.UpdateStatus(orderID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("new→processing failed: %v", err)
	}
	if _, err := svc.UpdateStatus(orderID, constants.OrderStatusConfirmed); err != nil {
		t.Fatalf("processing→confirmed failed: %v", err)
	}

	var got models.Order
	if err := db.First(&got, orderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be stamped")
	}

	if _, err := svc.UpdateStatus(orderID, constants.OrderStatusCompleted); err != nil {
		t.Fatalf("confirmed→completed failed: %v", err)
	}
	if err := db.First(&got, orderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatalf("completed_at should be stamped")
	}
	if _, err := svc.UpdateStatus(orderID, constants.OrderStatusCanceled); err != ErrOrderStatusInvalid {
		t.Fatalf("completed is terminal, want ErrOrderStatusInvalid got %v", err)
	}
}

func TestTrackByOrderNoRequiresMatchingPhone(t *testing.T) {
	svc, db, _, _ := newOrderFixture(t)
	product := createServiceProduct(t, db, "track-bike", 450, nil)

	result, err := svc.Checkout(CheckoutInput{
		CustomerName:   "Nina",
		Phone:          "+375 29 777-88-99",
		DeliveryMethod: constants.DeliveryMethodPickup,
		Items:          []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	order, err := svc.TrackByOrderNo(result.Order.OrderNo, "375297778899")
	if err != nil {
		t.Fatalf("track with matching phone failed: %v", err)
	}
	if order.ID != result.Order.ID {
		t.Fatalf("tracked wrong order")
	}

	if _, err := svc.TrackByOrderNo(result.Order.OrderNo, "375290000000"); err != ErrOrderNotFound {
		t.Fatalf("track with wrong phone want ErrOrderNotFound got %v", err)
	}
}
