package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

const dateLayout = "2006-01-02"

// ProductSource lists the products currently at or below minimum stock.
type ProductSource interface {
	LowStock() []models.Product
}

// LedgerSource reads the append-only ledger.
type LedgerSource interface {
	Ledger(kind models.LedgerKind) ([]models.LedgerEntry, error)
}

// Service builds the text summaries sent to the store manager.
type Service struct {
	products ProductSource
	ledger   LedgerSource
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(products ProductSource, ledger LedgerSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, ledger: ledger, logger: logger}
}

// SuggestedReorder is the quantity that brings stock back to twice the minimum.
func SuggestedReorder(p models.Product) int {
	qty := p.MinStock*2 - p.CurrentStock
	if qty < 1 {
		return 1
	}
	return qty
}

// LowStockSummary lists low stock products grouped by supplier with a suggested quantity.
func (s *Service) LowStockSummary(now time.Time) string {
	low := s.products.LowStock()
	if len(low) == 0 {
		return fmt.Sprintf("Low stock (%s): everything is above minimum.", now.Format(dateLayout))
	}

	bySupplier := make(map[string][]models.Product)
	for _, p := range low {
		supplier := p.Supplier
		if supplier == "" {
			supplier = "No supplier"
		}
		bySupplier[supplier] = append(bySupplier[supplier], p)
	}
	suppliers := make([]string, 0, len(bySupplier))
	for name := range bySupplier {
		suppliers = append(suppliers, name)
	}
	sort.Strings(suppliers)

	var b strings.Builder
	fmt.Fprintf(&b, "Low stock (%s): %d products need reordering.", now.Format(dateLayout), len(low))
	for _, supplier := range suppliers {
		fmt.Fprintf(&b, "\n%s:", supplier)
		for _, p := range bySupplier[supplier] {
			fmt.Fprintf(&b, "\n- %s: %d left (min %d), order %d", p.Name, p.CurrentStock, p.MinStock, SuggestedReorder(p))
		}
	}
	return b.String()
}

// ReorderSummary totals the quantities ordered between start and end.
func (s *Service) ReorderSummary(start, end time.Time) (string, error) {
	entries, err := s.ledger.Ledger(models.LedgerOrder)
	if err != nil {
		return "", fmt.Errorf("load reorder ledger: %w", err)
	}

	var units int
	orders := make(map[string]struct{})
	for _, e := range entries {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		if e.Quantity < 1 {
			s.logger.Debug("skip reorder entry without quantity", zap.String("reference_id", e.ReferenceID))
			continue
		}
		units += e.Quantity
		orders[e.ReferenceID] = struct{}{}
	}

	if len(orders) == 0 {
		return fmt.Sprintf("Reorders (%s-%s): nothing ordered.", start.Format(dateLayout), end.Format(dateLayout)), nil
	}
	return fmt.Sprintf("Reorders (%s-%s): %d units across %d purchase orders.", start.Format(dateLayout), end.Format(dateLayout), units, len(orders)), nil
}

// StocktakeSummary reports how many products were counted between start and end
// and the net discrepancy found.
func (s *Service) StocktakeSummary(start, end time.Time) (string, error) {
	entries, err := s.ledger.Ledger(models.LedgerStocktake)
	if err != nil {
		return "", fmt.Errorf("load stocktake ledger: %w", err)
	}

	var counted, mismatched, net int
	for _, e := range entries {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		counted++
		if e.Discrepancy != 0 {
			mismatched++
			net += e.Discrepancy
		}
	}

	if counted == 0 {
		return fmt.Sprintf("Stocktakes (%s-%s): no counts recorded.", start.Format(dateLayout), end.Format(dateLayout)), nil
	}
	return fmt.Sprintf("Stocktakes (%s-%s): %d products counted, %d off by a net %+d units.", start.Format(dateLayout), end.Format(dateLayout), counted, mismatched, net), nil
}

// GenerateDailyReport combines the low stock list with the last 24 hours of activity.
func (s *Service) GenerateDailyReport(now time.Time) (string, error) {
	start := now.Add(-24 * time.Hour)

	reorders, err := s.ReorderSummary(start, now)
	if err != nil {
		return "", err
	}
	counts, err := s.StocktakeSummary(start, now)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{
		fmt.Sprintf("Daily stock report - %s", now.Format(dateLayout)),
		s.LowStockSummary(now),
		reorders,
		counts,
	}, "\n\n"), nil
}

// PurchaseOrderSummary formats one purchase order for a message.
func PurchaseOrderSummary(po models.PurchaseOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Purchase order %s for %s (%s), %d units", po.ID, po.SupplierName, po.Date.Format(dateLayout), po.TotalQuantity())
	for _, item := range po.Items {
		fmt.Fprintf(&b, "\n- %s x%d", item.Name, item.Quantity)
	}
	if po.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", po.Notes)
	}
	return b.String()
}
