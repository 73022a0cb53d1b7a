package models

import (
	"fmt"
	"time"
)

// OrderItem is one line of a pending or submitted order, keyed by ProductID.
type OrderItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Barcode   string `json:"barcode" bson:"barcode"`
	Name      string `json:"name" bson:"name"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Supplier  string `json:"supplier" bson:"supplier"`
}

// OrderStatus enumerates the purchase order lifecycle.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderSubmitted OrderStatus = "submitted"
	OrderReceived  OrderStatus = "received"
)

// UnknownSupplierID is used when a supplier name has no directory entry.
const UnknownSupplierID = "unknown"

// PurchaseOrder groups the order lines destined for a single supplier.
type PurchaseOrder struct {
	ID           string      `json:"id"`
	SupplierID   string      `json:"supplier_id"`
	SupplierName string      `json:"supplier_name"`
	Date         time.Time   `json:"date"`
	Items        []OrderItem `json:"items"`
	Status       OrderStatus `json:"status"`
	Notes        string      `json:"notes,omitempty"`
}

// TotalQuantity sums the quantities of every line.
func (po PurchaseOrder) TotalQuantity() int {
	total := 0
	for _, item := range po.Items {
		total += item.Quantity
	}
	return total
}

// Transition moves the order to the next status. Only draft->submitted and
// submitted->received are allowed.
func (po *PurchaseOrder) Transition(to OrderStatus) error {
	switch {
	case po.Status == OrderDraft && to == OrderSubmitted:
	case po.Status == OrderSubmitted && to == OrderReceived:
	default:
		return fmt.Errorf("%w: purchase order %s cannot move from %s to %s", ErrInvalidTransition, po.ID, po.Status, to)
	}
	po.Status = to
	return nil
}
