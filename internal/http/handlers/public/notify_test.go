package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/provider"
	"github.com/velo-shop/internal/repository"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotifyHandlerTest(t *testing.T, cfg *config.Config) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:notify_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.PushSubscription{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	h := &Handler{Container: &provider.Container{
		Config:         cfg,
		OrderRepo:      repository.NewOrderRepository(db),
		PushSubRepo:    repository.NewPushSubscriptionRepository(db),
		PushService:    service.NewPushService(&cfg.Push, repository.NewPushSubscriptionRepository(db)),
		MessageService: service.NewMessageService(&cfg.Telegram, cfg.Shop.ContactPhone),
	}}
	return h, db
}

func notifyConfig() *config.Config {
	return &config.Config{
		Push: config.PushConfig{Enabled: true, TimeoutMS: 2000},
	}
}

func seedNotifyOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:        "VS-20260831-000001",
		CustomerName:   "Иван Петров",
		Phone:          "+7 900 111-22-33",
		DeliveryMethod: "pickup",
		Status:         constants.OrderStatusNew,
		TotalAmount:    models.NewMoneyFromInt(47990),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func performNotify(h *Handler, handle gin.HandlerFunc, body string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/notify/push", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			c.Request.Header.Set(key, value)
		}
	}
	handle(c)
	return w
}

func TestNotifyPushUnknownOrderReturns404WithoutDelivery(t *testing.T) {
	var hits atomic.Int64
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	h, db := setupNotifyHandlerTest(t, notifyConfig())
	if err := db.Create(&models.PushSubscription{Endpoint: endpoint.URL + "/sub/a"}).Error; err != nil {
		t.Fatalf("seed subscription failed: %v", err)
	}

	w := performNotify(h, h.NotifyPush, `{"order_id": 9999}`, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["error"] != "Order not found" {
		t.Fatalf(`error want "Order not found" got %q`, resp["error"])
	}
	if got := hits.Load(); got != 0 {
		t.Fatalf("endpoint posts want 0 got %d", got)
	}
}

func TestNotifyPushMissingOrderIDReturns400(t *testing.T) {
	h, _ := setupNotifyHandlerTest(t, notifyConfig())

	for _, body := range []string{`{}`, `{"order_id": 0}`, `not-json`} {
		w := performNotify(h, h.NotifyPush, body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status want 400 got %d", body, w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body %q: unmarshal response failed: %v", body, err)
		}
		if resp["error"] != "order_id is required" {
			t.Fatalf(`body %q: error want "order_id is required" got %q`, body, resp["error"])
		}
	}
}

func TestNotifyPushKnownOrderDeliversAndReportsCounts(t *testing.T) {
	var hits atomic.Int64
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	h, db := setupNotifyHandlerTest(t, notifyConfig())
	if err := db.Create(&models.PushSubscription{Endpoint: endpoint.URL + "/sub/a"}).Error; err != nil {
		t.Fatalf("seed subscription failed: %v", err)
	}
	order := seedNotifyOrder(t, db)

	w := performNotify(h, h.NotifyPush, fmt.Sprintf(`{"order_id": %d}`, order.ID), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Sent    int  `json:"sent"`
		Failed  int  `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if !resp.Success || resp.Sent != 1 || resp.Failed != 0 {
		t.Fatalf("report want {true,1,0} got {%v,%d,%d}", resp.Success, resp.Sent, resp.Failed)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("endpoint posts want 1 got %d", got)
	}
}

func TestNotifyMessageUnknownOrderReturns404(t *testing.T) {
	cfg := notifyConfig()
	cfg.Telegram = config.TelegramConfig{Enabled: true, BotToken: "token", ChatID: "1", TimeoutMS: 2000}
	h, _ := setupNotifyHandlerTest(t, cfg)

	w := performNotify(h, h.NotifyMessage, `{"order_id": 424242}`, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["error"] != "Order not found" {
		t.Fatalf(`error want "Order not found" got %q`, resp["error"])
	}
}

func TestNotifyMessageDisabledChannelReportsReason(t *testing.T) {
	cfg := notifyConfig()
	cfg.Telegram = config.TelegramConfig{Enabled: false}
	h, db := setupNotifyHandlerTest(t, cfg)
	order := seedNotifyOrder(t, db)

	w := performNotify(h, h.NotifyMessage, fmt.Sprintf(`{"order_id": %d}`, order.ID), nil)

	// 通道未启用不是调用方错误，仍返回 200
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.Success || resp.Reason == "" {
		t.Fatalf("want success=false with reason, got {%v,%q}", resp.Success, resp.Reason)
	}
}

func TestNotifyRejectsBadAuthToken(t *testing.T) {
	cfg := notifyConfig()
	cfg.Push.AuthToken = "secret-token"
	h, _ := setupNotifyHandlerTest(t, cfg)

	header := http.Header{}
	header.Set("Authorization", "Bearer wrong")
	w := performNotify(h, h.NotifyPush, `{"order_id": 1}`, header)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}

	header.Set("Authorization", "Bearer secret-token")
	w = performNotify(h, h.NotifyPush, `{"order_id": 1}`, header)
	if w.Code == http.StatusUnauthorized {
		t.Fatal("valid token should not be rejected")
	}
}
