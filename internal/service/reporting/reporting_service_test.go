package reporting

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

type staticProducts []models.Product

func (s staticProducts) LowStock() []models.Product { return s }

type staticLedger struct {
	entries []models.LedgerEntry
	err     error
}

func (l staticLedger) Ledger(kind models.LedgerKind) ([]models.LedgerEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	var out []models.LedgerEntry
	for _, e := range l.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

var reportDay = time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC)

func TestSuggestedReorder(t *testing.T) {
	cases := []struct {
		current, min, want int
	}{
		{current: 0, min: 5, want: 10},
		{current: 3, min: 5, want: 7},
		{current: 5, min: 2, want: 1},
		{current: 0, min: 0, want: 1},
	}
	for _, tc := range cases {
		got := SuggestedReorder(models.Product{CurrentStock: tc.current, MinStock: tc.min})
		if got != tc.want {
			t.Fatalf("stock %d/%d: got %d want %d", tc.current, tc.min, got, tc.want)
		}
	}
}

func TestLowStockSummary_GroupsBySupplier(t *testing.T) {
	svc := NewService(staticProducts{
		{Name: "Sugar", Supplier: "Bolt Co", CurrentStock: 1, MinStock: 4},
		{Name: "Flour", Supplier: "Acme", CurrentStock: 0, MinStock: 2},
		{Name: "Salt", CurrentStock: 2, MinStock: 2},
	}, staticLedger{}, nil)

	summary := svc.LowStockSummary(reportDay)
	for _, want := range []string{"3 products", "Acme:\n- Flour: 0 left (min 2), order 4", "Bolt Co:\n- Sugar: 1 left (min 4), order 7", "No supplier:\n- Salt"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Index(summary, "Acme") > strings.Index(summary, "Bolt Co") {
		t.Fatalf("suppliers should be sorted:\n%s", summary)
	}

	empty := NewService(staticProducts{}, staticLedger{}, nil)
	if got := empty.LowStockSummary(reportDay); !strings.Contains(got, "everything is above minimum") {
		t.Fatalf("unexpected empty summary: %s", got)
	}
}

func TestLedgerSummaries_FilterByPeriod(t *testing.T) {
	inside := reportDay.Add(-2 * time.Hour)
	outside := reportDay.Add(-48 * time.Hour)
	svc := NewService(staticProducts{}, staticLedger{entries: []models.LedgerEntry{
		{Kind: models.LedgerOrder, Timestamp: inside, ReferenceID: "po-1", Quantity: 3},
		{Kind: models.LedgerOrder, Timestamp: inside, ReferenceID: "po-1", Quantity: 2},
		{Kind: models.LedgerOrder, Timestamp: inside, ReferenceID: "po-2", Quantity: 4},
		{Kind: models.LedgerOrder, Timestamp: outside, ReferenceID: "po-0", Quantity: 50},
		{Kind: models.LedgerStocktake, Timestamp: inside, Expected: 10, Actual: 7, Discrepancy: -3},
		{Kind: models.LedgerStocktake, Timestamp: inside, Expected: 1, Actual: 2, Discrepancy: 1},
		{Kind: models.LedgerStocktake, Timestamp: inside, Expected: 5, Actual: 5},
	}}, nil)

	report, err := svc.GenerateDailyReport(reportDay)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"9 units across 2 purchase orders", "3 products counted, 2 off by a net -2 units"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestLedgerSummaries_PropagateErrors(t *testing.T) {
	svc := NewService(staticProducts{}, staticLedger{err: errors.New("closed")}, nil)
	if _, err := svc.GenerateDailyReport(reportDay); err == nil {
		t.Fatalf("expected ledger error")
	}
}

func TestPurchaseOrderSummary(t *testing.T) {
	po := models.PurchaseOrder{
		ID:           "po-7",
		SupplierName: "Acme",
		Date:         reportDay,
		Notes:        "deliver before noon",
		Items: []models.OrderItem{
			{Name: "Flour", Quantity: 3},
			{Name: "Yeast", Quantity: 2},
		},
	}
	got := PurchaseOrderSummary(po)
	want := "Purchase order po-7 for Acme (2024-06-03), 5 units\n- Flour x3\n- Yeast x2\nNotes: deliver before noon"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
