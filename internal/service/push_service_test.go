package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"

	"gorm.io/gorm"
)

func newPushFixture(t *testing.T) (*PushService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	if err := db.AutoMigrate(&models.PushSubscription{}); err != nil {
		t.Fatalf("migrate push subscription failed: %v", err)
	}
	svc := NewPushService(
		&config.PushConfig{Enabled: true, TimeoutMS: 2000},
		repository.NewPushSubscriptionRepository(db),
	)
	return svc, db
}

func TestBroadcastReportsSentAndFailed(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer okServer.Close()
	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failServer.Close()

	svc, db := newPushFixture(t)
	for _, endpoint := range []string{okServer.URL + "/sub/a", okServer.URL + "/sub/b", failServer.URL + "/sub/c"} {
		if err := db.Create(&models.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			t.Fatalf("seed subscription failed: %v", err)
		}
	}

	report, err := svc.Broadcast(context.Background(), PushMessage{Title: "test", Body: "hello"})
	if err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if report.Sent != 2 {
		t.Fatalf("sent want 2 got %d", report.Sent)
	}
	if report.Failed != 1 {
		t.Fatalf("failed want 1 got %d", report.Failed)
	}

	// 5xx 端点保留，不清理
	var count int64
	if err := db.Model(&models.PushSubscription{}).Count(&count).Error; err != nil {
		t.Fatalf("count subscriptions failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("subscription count want 3 got %d", count)
	}
}

func TestBroadcastCleansExpiredEndpoints(t *testing.T) {
	goneServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/gone") {
			w.WriteHeader(http.StatusGone)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer goneServer.Close()

	svc, db := newPushFixture(t)
	endpoints := []string{
		goneServer.URL + "/sub/live",
		goneServer.URL + "/sub/gone",
		goneServer.URL + "/sub/missing",
	}
	for _, endpoint := range endpoints {
		if err := db.Create(&models.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			t.Fatalf("seed subscription failed: %v", err)
		}
	}

	report, err := svc.Broadcast(context.Background(), PushMessage{Title: "cleanup", Body: "test"})
	if err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if report.Sent != 1 || report.Failed != 2 {
		t.Fatalf("report want sent=1 failed=2 got %+v", report)
	}

	var remaining []models.PushSubscription
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("list subscriptions failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expired endpoints should be removed, remaining %d", len(remaining))
	}
	if remaining[0].Endpoint != endpoints[0] {
		t.Fatalf("live endpoint should survive, got %s", remaining[0].Endpoint)
	}
}

func TestSubscribeValidatesEndpoint(t *testing.T) {
	svc, _ := newPushFixture(t)

	if err := svc.Subscribe("", nil); err != ErrSubscriptionInvalid {
		t.Fatalf("empty endpoint want ErrSubscriptionInvalid got %v", err)
	}
	if err := svc.Subscribe("http://insecure.example.com/push", nil); err != ErrSubscriptionInvalid {
		t.Fatalf("plain http endpoint want ErrSubscriptionInvalid got %v", err)
	}
	if err := svc.Subscribe("https://push.example.com/sub/1", models.JSON{"auth": "k"}); err != nil {
		t.Fatalf("valid endpoint rejected: %v", err)
	}
	// 重复订阅覆盖而非报错
	if err := svc.Subscribe("https://push.example.com/sub/1", models.JSON{"auth": "k2"}); err != nil {
		t.Fatalf("repeat subscribe failed: %v", err)
	}
}

func TestBroadcastDisabledChannel(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPushService(&config.PushConfig{Enabled: false}, repository.NewPushSubscriptionRepository(db))
	if _, err := svc.Broadcast(context.Background(), PushMessage{}); err != ErrNotificationDisabled {
		t.Fatalf("disabled channel want ErrNotificationDisabled got %v", err)
	}
}
