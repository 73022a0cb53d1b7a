package models

import "time"

// LedgerKind distinguishes the two append-only ledgers.
type LedgerKind string

const (
	LedgerOrder     LedgerKind = "order"
	LedgerStocktake LedgerKind = "stocktake"
)

// LedgerEntry is a single append-only row of the reorder or stocktake ledger.
type LedgerEntry struct {
	Kind        LedgerKind `json:"kind" bson:"kind"`
	Timestamp   time.Time  `json:"timestamp" bson:"timestamp"`
	ReferenceID string     `json:"reference_id" bson:"reference_id"`
	ProductID   string     `json:"product_id" bson:"product_id"`
	Barcode     string     `json:"barcode" bson:"barcode"`
	Name        string     `json:"name" bson:"name"`
	Supplier    string     `json:"supplier,omitempty" bson:"supplier,omitempty"`
	Quantity    int        `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Expected    int        `json:"expected,omitempty" bson:"expected,omitempty"`
	Actual      int        `json:"actual,omitempty" bson:"actual,omitempty"`
	Discrepancy int        `json:"discrepancy,omitempty" bson:"discrepancy,omitempty"`
}

// OrderLedgerEntries builds one timestamped entry per purchase order line.
func OrderLedgerEntries(po PurchaseOrder, items []OrderItem, at time.Time) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, LedgerEntry{
			Kind:        LedgerOrder,
			Timestamp:   at,
			ReferenceID: po.ID,
			ProductID:   item.ProductID,
			Barcode:     item.Barcode,
			Name:        item.Name,
			Supplier:    item.Supplier,
			Quantity:    item.Quantity,
		})
	}
	return entries
}

// StocktakeLedgerEntries builds one timestamped entry per counted product.
func StocktakeLedgerEntries(sessionID string, items []StocktakeItem, at time.Time) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, LedgerEntry{
			Kind:        LedgerStocktake,
			Timestamp:   at,
			ReferenceID: sessionID,
			ProductID:   item.ProductID,
			Barcode:     item.Barcode,
			Name:        item.Name,
			Expected:    item.ExpectedQuantity,
			Actual:      item.ActualQuantity,
			Discrepancy: item.Discrepancy(),
		})
	}
	return entries
}
