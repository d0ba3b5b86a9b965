package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"
)

// MessageService 即时消息通知服务（Telegram Bot API）
type MessageService struct {
	cfg          *config.TelegramConfig
	contactPhone string
	client       *http.Client
}

// NewMessageService 创建消息通知服务
func NewMessageService(cfg *config.TelegramConfig, contactPhone string) *MessageService {
	timeout := 5 * time.Second
	if cfg != nil && cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &MessageService{
		cfg:          cfg,
		contactPhone: contactPhone,
		client:       &http.Client{Timeout: timeout},
	}
}

// Enabled 消息通道是否启用
func (s *MessageService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled &&
		strings.TrimSpace(s.cfg.BotToken) != "" && strings.TrimSpace(s.cfg.ChatID) != ""
}

// NotifyOrder 按通知类型发送订单消息
func (s *MessageService) NotifyOrder(ctx context.Context, order *models.Order, notifyType string) error {
	if !s.Enabled() {
		return ErrNotificationDisabled
	}
	if order == nil {
		return ErrOrderNotFound
	}
	var text string
	switch notifyType {
	case constants.NotifyTypeStatusChange:
		text = buildStatusChangeMessage(order)
	default:
		text = buildNewOrderMessage(order)
	}
	return s.send(ctx, text, buildContactKeyboard(order.Phone, s.contactPhone))
}

// buildNewOrderMessage 新订单消息：买家、联系方式、明细与总价
func buildNewOrderMessage(order *models.Order) string {
	var b strings.Builder
	b.WriteString("🛒 *New order ")
	b.WriteString(EscapeMarkdownV2(order.OrderNo))
	b.WriteString("*\n\n")
	b.WriteString(fmt.Sprintf("Customer: %s\n", EscapeMarkdownV2(order.CustomerName)))
	b.WriteString(fmt.Sprintf("Phone: %s\n", EscapeMarkdownV2(order.Phone)))
	if strings.TrimSpace(order.Email) != "" {
		b.WriteString(fmt.Sprintf("Email: %s\n", EscapeMarkdownV2(order.Email)))
	}
	b.WriteString(fmt.Sprintf("Delivery: %s\n", EscapeMarkdownV2(order.DeliveryMethod)))
	if strings.TrimSpace(order.Address) != "" {
		b.WriteString(fmt.Sprintf("Address: %s\n", EscapeMarkdownV2(order.Address)))
	}
	if strings.TrimSpace(order.Comment) != "" {
		b.WriteString(fmt.Sprintf("Comment: %s\n", EscapeMarkdownV2(order.Comment)))
	}
	if len(order.Items) > 0 {
		b.WriteString("\n")
		for _, item := range order.Items {
			b.WriteString(fmt.Sprintf("• %s ×%d — %s\n",
				EscapeMarkdownV2(item.Name),
				item.Quantity,
				EscapeMarkdownV2(item.UnitPrice.String())))
		}
	}
	b.WriteString(fmt.Sprintf("\n*Total: %s*", EscapeMarkdownV2(order.TotalAmount.String())))
	return b.String()
}

// buildStatusChangeMessage 状态变更消息：订单号与新状态
func buildStatusChangeMessage(order *models.Order) string {
	return fmt.Sprintf("📦 Order %s → *%s*",
		EscapeMarkdownV2(order.OrderNo),
		EscapeMarkdownV2(order.Status))
}

// buildContactKeyboard 快捷联系按钮：优先联系买家，其次店铺电话
func buildContactKeyboard(customerPhone, shopPhone string) map[string]interface{} {
	var row []map[string]string
	if digits := normalizePhone(customerPhone); digits != "" {
		row = append(row, map[string]string{
			"text": "WhatsApp customer",
			"url":  "https://wa.me/" + digits,
		})
	}
	if digits := normalizePhone(shopPhone); digits != "" {
		row = append(row, map[string]string{
			"text": "Call shop",
			"url":  "https://wa.me/" + digits,
		})
	}
	if len(row) == 0 {
		return nil
	}
	return map[string]interface{}{
		"inline_keyboard": [][]map[string]string{row},
	}
}

func (s *MessageService) send(ctx context.Context, text string, replyMarkup map[string]interface{}) error {
	apiBase := strings.TrimRight(strings.TrimSpace(s.cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, s.cfg.BotToken)

	body := map[string]interface{}{
		"chat_id":    s.cfg.ChatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	}
	if replyMarkup != nil {
		body["reply_markup"] = replyMarkup
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Warnw("telegram_send_failed", "status", resp.StatusCode, "response", string(detail))
		return fmt.Errorf("telegram send failed: status %d", resp.StatusCode)
	}
	return nil
}

// markdownV2Special MarkdownV2 要求转义的字符集
const markdownV2Special = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 转义 MarkdownV2 特殊字符
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
