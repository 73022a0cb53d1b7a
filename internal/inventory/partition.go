package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// IDGenerator produces purchase order identifiers.
type IDGenerator func() string

// NewOrderID returns a time-ordered UUIDv7, falling back to a random v4.
func NewOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Partition splits order lines into one draft purchase order per supplier name.
// Suppliers keep their first-seen order and names match exactly. A supplier
// missing from the directory gets models.UnknownSupplierID.
func Partition(items []models.OrderItem, suppliers []models.Supplier, now time.Time, newID IDGenerator) []models.PurchaseOrder {
	if newID == nil {
		newID = NewOrderID
	}

	directory := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		if _, seen := directory[s.Name]; !seen {
			directory[s.Name] = s.ID
		}
	}

	var orders []models.PurchaseOrder
	bySupplier := make(map[string]int)
	for _, item := range items {
		idx, ok := bySupplier[item.Supplier]
		if !ok {
			supplierID, known := directory[item.Supplier]
			if !known {
				supplierID = models.UnknownSupplierID
			}
			orders = append(orders, models.PurchaseOrder{
				ID:           newID(),
				SupplierID:   supplierID,
				SupplierName: item.Supplier,
				Date:         now,
				Status:       models.OrderDraft,
			})
			idx = len(orders) - 1
			bySupplier[item.Supplier] = idx
		}
		orders[idx].Items = append(orders[idx].Items, item)
	}
	return orders
}
