package inventory

import "github.com/mamadbah2/stockroom/internal/domain/models"

// Stocktake holds one counted entry per product for the current session.
// The first scan of a product wins; later scans must go through UpdateQuantity.
type Stocktake struct {
	items []models.StocktakeItem
	index map[string]int
}

// NewStocktake returns an empty stocktake session.
func NewStocktake() *Stocktake {
	return &Stocktake{index: make(map[string]int)}
}

// AddItem records counted against the product's current stock. Products already
// present and negative counts are ignored. It reports whether an entry was created.
func (s *Stocktake) AddItem(p models.Product, counted int) bool {
	if counted < 0 {
		return false
	}
	if _, ok := s.index[p.ID]; ok {
		return false
	}
	s.items = append(s.items, models.StocktakeItem{
		ProductID:        p.ID,
		Barcode:          p.Barcode,
		Name:             p.Name,
		ExpectedQuantity: p.CurrentStock,
		ActualQuantity:   counted,
	})
	s.index[p.ID] = len(s.items) - 1
	return true
}

// UpdateQuantity sets the counted quantity. The expected quantity never changes.
func (s *Stocktake) UpdateQuantity(productID string, actual int) {
	if actual < 0 {
		return
	}
	if idx, ok := s.index[productID]; ok {
		s.items[idx].ActualQuantity = actual
	}
}

// RemoveItem deletes the entry for the product, if any.
func (s *Stocktake) RemoveItem(productID string) {
	idx, ok := s.index[productID]
	if !ok {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.index, productID)
	for i := idx; i < len(s.items); i++ {
		s.index[s.items[i].ProductID] = i
	}
}

// Clear empties the session.
func (s *Stocktake) Clear() {
	s.items = nil
	s.index = make(map[string]int)
}

// Items returns a copy of the entries in scan order.
func (s *Stocktake) Items() []models.StocktakeItem {
	out := make([]models.StocktakeItem, len(s.items))
	copy(out, s.items)
	return out
}

// Changed returns the entries whose count differs from the expected stock.
func (s *Stocktake) Changed() []models.StocktakeItem {
	var out []models.StocktakeItem
	for _, item := range s.items {
		if item.Discrepancy() != 0 {
			out = append(out, item)
		}
	}
	return out
}

// Has reports whether the product already has an entry.
func (s *Stocktake) Has(productID string) bool {
	_, ok := s.index[productID]
	return ok
}

// Len returns the number of entries.
func (s *Stocktake) Len() int { return len(s.items) }
