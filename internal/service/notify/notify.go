package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/service/reporting"
	"github.com/mamadbah2/stockroom/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Notifier delivers a text message to the store manager.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Send(context.Context, string) error { return nil }

// WhatsApp sends messages to one configured recipient.
type WhatsApp struct {
	client whatsapp.Client
	to     string
	logger *zap.Logger
}

// NewWhatsApp wires a WhatsApp notifier for recipient to.
func NewWhatsApp(client whatsapp.Client, to string, logger *zap.Logger) *WhatsApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsApp{client: client, to: to, logger: logger}
}

func (w *WhatsApp) Send(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := w.client.SendText(ctx, whatsapp.TextMessage{To: w.to, Body: text})
	if err != nil {
		return fmt.Errorf("notify manager: %w", err)
	}
	w.logger.Debug("notification sent", zap.String("message_id", id))
	return nil
}

// FromConfig returns a WhatsApp notifier when credentials are present, Nop otherwise.
func FromConfig(cfg config.WhatsAppConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		logger.Info("whatsapp notifications disabled")
		return Nop{}
	}
	return NewWhatsApp(whatsapp.NewClient(cfg), cfg.ManagerID, logger)
}

// Orders announces submitted purchase orders through a Notifier.
type Orders struct {
	notifier Notifier
}

// NewOrders adapts n to the inventory service's purchase order hook.
func NewOrders(n Notifier) *Orders {
	return &Orders{notifier: n}
}

// OrdersSubmitted sends one message listing every purchase order of the batch.
func (o *Orders) OrdersSubmitted(ctx context.Context, orders []models.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}
	summaries := make([]string, 0, len(orders))
	for _, po := range orders {
		summaries = append(summaries, reporting.PurchaseOrderSummary(po))
	}
	return o.notifier.Send(ctx, strings.Join(summaries, "\n\n"))
}
