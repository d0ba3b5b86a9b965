package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"

	"github.com/shopspring/decimal"
)

func TestEscapeMarkdownV2(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"a_b*c[d]e", `a\_b\*c\[d\]e`},
		{"price 10.50 (sale!)", `price 10\.50 \(sale\!\)`},
		{"a-b+c=d", `a\-b\+c\=d`},
		{"", ""},
	}
	for _, tc := range cases {
		if got := EscapeMarkdownV2(tc.in); got != tc.want {
			t.Fatalf("escape %q want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestNotifyOrderSendsTwoMessageShapes(t *testing.T) {
	var requests []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/bottest-token/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		requests = append(requests, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewMessageService(&config.TelegramConfig{
		Enabled:  true,
		BotToken: "test-token",
		ChatID:   "-100200300",
		APIBase:  server.URL,
	}, "+375291234567")

	order := &models.Order{
		OrderNo:        "VS-20260831-000777",
		CustomerName:   "Ivan (test)",
		Phone:          "+375 29 111-22-33",
		DeliveryMethod: constants.DeliveryMethodPickup,
		Status:         constants.OrderStatusNew,
		TotalAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(2100)),
		Items: []models.OrderItem{
			{Name: "City bike", UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(2100)), Quantity: 1},
		},
	}

	if err := svc.NotifyOrder(context.Background(), order, constants.NotifyTypeNewOrder); err != nil {
		t.Fatalf("notify new order failed: %v", err)
	}
	order.Status = constants.OrderStatusConfirmed
	if err := svc.NotifyOrder(context.Background(), order, constants.NotifyTypeStatusChange); err != nil {
		t.Fatalf("notify status change failed: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("request count want 2 got %d", len(requests))
	}

	newOrderText := requests[0]["text"].(string)
	if !strings.Contains(newOrderText, "New order") {
		t.Fatalf("new order message missing heading: %q", newOrderText)
	}
	if !strings.Contains(newOrderText, `VS\-20260831\-000777`) {
		t.Fatalf("order no should be escaped for MarkdownV2: %q", newOrderText)
	}
	if !strings.Contains(newOrderText, "City bike") {
		t.Fatalf("new order message should list items: %q", newOrderText)
	}
	if requests[0]["parse_mode"] != "MarkdownV2" {
		t.Fatalf("parse mode want MarkdownV2 got %v", requests[0]["parse_mode"])
	}
	if _, ok := requests[0]["reply_markup"]; !ok {
		t.Fatalf("new order message should carry quick-contact buttons")
	}

	statusText := requests[1]["text"].(string)
	if !strings.Contains(statusText, "confirmed") {
		t.Fatalf("status message should carry new status: %q", statusText)
	}
	if strings.Contains(statusText, "City bike") {
		t.Fatalf("status message should be compact, no item list: %q", statusText)
	}
}

func TestNotifyOrderDisabledChannel(t *testing.T) {
	svc := NewMessageService(&config.TelegramConfig{Enabled: false}, "")
	err := svc.NotifyOrder(context.Background(), &models.Order{}, constants.NotifyTypeNewOrder)
	if err != ErrNotificationDisabled {
		t.Fatalf("disabled channel want ErrNotificationDisabled got %v", err)
	}
}

func TestBuildContactKeyboardUsesDigitsOnly(t *testing.T) {
	markup := buildContactKeyboard("+375 (29) 111-22-33", "")
	if markup == nil {
		t.Fatalf("keyboard should be built for customer phone")
	}
	rows := markup["inline_keyboard"].([][]map[string]string)
	if len(rows) != 1 || len(rows[0]) != 1 {
		t.Fatalf("keyboard shape mismatch: %+v", rows)
	}
	if rows[0][0]["url"] != "https://wa.me/375291112233" {
		t.Fatalf("wa.me url want digits only, got %s", rows[0][0]["url"])
	}

	if markup := buildContactKeyboard("", ""); markup != nil {
		t.Fatalf("no phones should yield nil keyboard")
	}
}
