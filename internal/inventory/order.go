package inventory

import "github.com/mamadbah2/stockroom/internal/domain/models"

// Order accumulates the items of a pending order, at most one line per product.
// It is not safe for concurrent use; Service serializes access.
type Order struct {
	items []models.OrderItem
	index map[string]int
}

// NewOrder returns an empty pending order.
func NewOrder() *Order {
	return &Order{index: make(map[string]int)}
}

// AddItem merges quantity into the existing line for the product or appends a new one.
// Quantities below one are ignored.
func (o *Order) AddItem(p models.Product, quantity int) {
	if quantity < 1 {
		return
	}
	if idx, ok := o.index[p.ID]; ok {
		o.items[idx].Quantity += quantity
		return
	}
	o.items = append(o.items, models.OrderItem{
		ProductID: p.ID,
		Barcode:   p.Barcode,
		Name:      p.Name,
		Quantity:  quantity,
		Supplier:  p.Supplier,
	})
	o.index[p.ID] = len(o.items) - 1
}

// UpdateQuantity replaces the quantity of an existing line.
func (o *Order) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		return
	}
	if idx, ok := o.index[productID]; ok {
		o.items[idx].Quantity = quantity
	}
}

// RemoveItem deletes the line for the product, if any.
func (o *Order) RemoveItem(productID string) {
	idx, ok := o.index[productID]
	if !ok {
		return
	}
	o.items = append(o.items[:idx], o.items[idx+1:]...)
	delete(o.index, productID)
	for i := idx; i < len(o.items); i++ {
		o.index[o.items[i].ProductID] = i
	}
}

// Clear empties the order.
func (o *Order) Clear() {
	o.items = nil
	o.index = make(map[string]int)
}

// Items returns a copy of the lines in insertion order.
func (o *Order) Items() []models.OrderItem {
	out := make([]models.OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

// Has reports whether the product already has a line.
func (o *Order) Has(productID string) bool {
	_, ok := o.index[productID]
	return ok
}

// Len returns the number of lines.
func (o *Order) Len() int { return len(o.items) }
