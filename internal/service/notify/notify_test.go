package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []whatsapp.TextMessage
	err  error
}

func (f *fakeClient) SendText(_ context.Context, msg whatsapp.TextMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "wamid.1", nil
}

func TestWhatsApp_SendsToManager(t *testing.T) {
	client := &fakeClient{}
	n := NewWhatsApp(client, "221700000000", nil)

	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(client.sent) != 1 || client.sent[0].To != "221700000000" || client.sent[0].Body != "hello" {
		t.Fatalf("unexpected messages: %+v", client.sent)
	}

	client.err = errors.New("rate limited")
	if err := n.Send(context.Background(), "again"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromConfig_DisabledWithoutCredentials(t *testing.T) {
	if _, ok := FromConfig(config.WhatsAppConfig{}, nil).(Nop); !ok {
		t.Fatalf("want Nop notifier without credentials")
	}
	cfg := config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", ManagerID: "m", BaseURL: "http://localhost", APIVersion: "v20.0"}
	if _, ok := FromConfig(cfg, nil).(*WhatsApp); !ok {
		t.Fatalf("want WhatsApp notifier when configured")
	}
}

type recorder struct{ texts []string }

func (r *recorder) Send(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

func TestOrders_OneMessagePerBatch(t *testing.T) {
	rec := &recorder{}
	orders := NewOrders(rec)

	err := orders.OrdersSubmitted(context.Background(), []models.PurchaseOrder{
		{ID: "po-1", SupplierName: "Acme", Items: []models.OrderItem{{Name: "Flour", Quantity: 5}}},
		{ID: "po-2", SupplierName: "Bolt Co", Items: []models.OrderItem{{Name: "Bolts", Quantity: 1}}},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(rec.texts) != 1 || !strings.Contains(rec.texts[0], "po-1 for Acme") || !strings.Contains(rec.texts[0], "po-2 for Bolt Co") {
		t.Fatalf("unexpected messages: %q", rec.texts)
	}

	if err := orders.OrdersSubmitted(context.Background(), nil); err != nil || len(rec.texts) != 1 {
		t.Fatalf("empty batch should send nothing")
	}
}
