package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

func TestSheetsBackend_RoundTrip(t *testing.T) {
	b := NewSheetsBackend(newFakeSheets(), nil, nil, nil, nil)
	want := catalogFixture()

	if err := b.PersistProducts(context.Background(), want); err != nil {
		t.Fatalf("persist: %v", err)
	}
	got, err := b.FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	assertSameProducts(t, got, want)

	// a shorter rewrite must not leave stale rows behind
	if err := b.PersistProducts(context.Background(), want[:1]); err != nil {
		t.Fatalf("persist: %v", err)
	}
	got, _ = b.FetchProducts(context.Background())
	assertSameProducts(t, got, want[:1])
}

func TestSheetsBackend_SkipsMalformedRows(t *testing.T) {
	sheets := newFakeSheets()
	sheets.tabs["Products"] = [][]interface{}{
		productColumns,
		{"p1", "111", "", "Flour", "", "", "Acme", "", 2.5, 1.0, float64(10), float64(2)},
		{"p2", "222", "", "Sugar", "", "", "Acme", "", "cheap", 1.0, 3, 1},
		{"", "333", "", "No id"},
		{},
		{"p3", 4445556667.0, "", "Salt", "", "", "", "", "", "", "4", "-1"},
		{"p4", "444", "", "Pepper", "", "", "", "", "", "", "2.5", ""},
		{"p5", "555", "", "Rice", "", "", "", "", "", "", "", "", "", "yesterday"},
		{"p6", 4445556667.0, "", "Oil"},
	}
	b := NewSheetsBackend(sheets, nil, nil, nil, nil)

	got, err := b.FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("malformed rows must not fail the fetch: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p6" {
		t.Fatalf("unexpected products: %+v", got)
	}
	if got[0].CurrentStock != 10 || got[0].Price != 2.5 {
		t.Fatalf("numeric cells not decoded: %+v", got[0])
	}
	if got[1].Barcode != "4445556667" || got[1].CurrentStock != 0 {
		t.Fatalf("numeric barcode or empty stock mishandled: %+v", got[1])
	}
}

func TestSheetsBackend_NonAtomicRewriteIsReported(t *testing.T) {
	sheets := newFakeSheets()
	b := NewSheetsBackend(sheets, nil, nil, nil, nil)
	if err := b.PersistProducts(context.Background(), catalogFixture()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sheets.updateErr = errors.New("timeout")
	err := b.PersistProducts(context.Background(), catalogFixture())
	if !errors.Is(err, models.ErrNonAtomicWrite) || !errors.Is(err, models.ErrBackendUnavailable) {
		t.Fatalf("want ErrNonAtomicWrite, got %v", err)
	}

	sheets.updateErr = nil
	sheets.clearErr = errors.New("timeout")
	err = b.PersistProducts(context.Background(), catalogFixture())
	if errors.Is(err, models.ErrNonAtomicWrite) || !errors.Is(err, models.ErrBackendUnavailable) {
		t.Fatalf("a failed clear leaves the sheet intact, got %v", err)
	}
}

func TestSheetsBackend_PersistSingleProductUpdatesOrAppends(t *testing.T) {
	sheets := newFakeSheets()
	b := NewSheetsBackend(sheets, nil, nil, nil, nil)
	ctx := context.Background()

	first := models.Product{ID: "p1", Barcode: "111", Name: "Flour", CurrentStock: 1}
	if err := b.PersistSingleProduct(ctx, first); err != nil {
		t.Fatalf("first product: %v", err)
	}
	second := models.Product{ID: "p2", Barcode: "222", Name: "Sugar", CurrentStock: 2}
	if err := b.PersistSingleProduct(ctx, second); err != nil {
		t.Fatalf("append: %v", err)
	}
	first.CurrentStock = 9
	if err := b.PersistSingleProduct(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := b.FetchProducts(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[0].CurrentStock != 9 || got[1].ID != "p2" {
		t.Fatalf("unexpected products: %+v", got)
	}
	if header := sheets.tabs["Products"][0]; header[0] != "id" {
		t.Fatalf("header row missing: %v", header)
	}
}

func TestSheetsBackend_LedgerRowsPerKind(t *testing.T) {
	sheets := newFakeSheets()
	b := NewSheetsBackend(sheets, nil, nil, nil, nil)

	entries := append(
		models.OrderLedgerEntries(models.PurchaseOrder{ID: "po-1"}, []models.OrderItem{{ProductID: "p1", Quantity: 3, Supplier: "Acme"}}, timeFixture),
		models.StocktakeLedgerEntries("st-1", []models.StocktakeItem{{ProductID: "p2", ExpectedQuantity: 5, ActualQuantity: 6}}, timeFixture)...,
	)
	if err := b.AppendLedger(context.Background(), entries); err != nil {
		t.Fatalf("append: %v", err)
	}

	orders := sheets.tabs["Reorders"]
	if len(orders) != 1 || orders[0][1] != "po-1" || orders[0][6] != 3 {
		t.Fatalf("unexpected reorder rows: %v", orders)
	}
	counts := sheets.tabs["Stocktakes"]
	if len(counts) != 1 || counts[0][7] != 1 {
		t.Fatalf("unexpected stocktake rows: %v", counts)
	}
}

func TestSheetsBackend_UnconfiguredAndUnreachable(t *testing.T) {
	b := NewSheetsBackend(nil, []string{"GOOGLE_SHEET_DATABASE_ID"}, nil, nil, nil)
	if _, err := b.FetchProducts(context.Background()); !errors.Is(err, models.ErrBackendUnavailable) {
		t.Fatalf("want ErrBackendUnavailable, got %v", err)
	}

	sheets := newFakeSheets()
	sheets.pingErr = errors.New("403")
	b = NewSheetsBackend(sheets, nil, nil, nil, nil)
	if status := b.CheckConfiguration(context.Background()); status.OK || status.Detail == "" {
		t.Fatalf("unreachable spreadsheet should not be OK: %+v", status)
	}
	sheets.readErr = errors.New("403")
	if _, err := b.FetchProducts(context.Background()); !errors.Is(err, models.ErrBackendUnavailable) {
		t.Fatalf("want ErrBackendUnavailable, got %v", err)
	}
}
