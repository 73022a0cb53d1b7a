package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// Store holds the in-memory product list, indexed by id and barcode.
// Reads return copies so callers never mutate shared state.
type Store struct {
	mu        sync.RWMutex
	products  []models.Product
	byID      map[string]int
	byBarcode map[string]int
	unsynced  map[string]struct{}
}

// NewStore creates a catalog seeded with the provided products.
func NewStore(products []models.Product) *Store {
	s := &Store{unsynced: make(map[string]struct{})}
	s.replaceLocked(products)
	return s
}

// All returns a copy of the catalog in insertion order.
func (s *Store) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of products in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// GetByBarcode looks up a product by its barcode.
func (s *Store) GetByBarcode(barcode string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byBarcode[barcode]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: no product with barcode %q", models.ErrNotFound, barcode)
	}
	return s.products[idx], nil
}

// GetByID looks up a product by its id.
func (s *Store) GetByID(id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: no product with id %q", models.ErrNotFound, id)
	}
	return s.products[idx], nil
}

// Replace swaps the whole list, typically with the result of a backend fetch.
// Unsynced marks for products no longer present are dropped.
func (s *Store) Replace(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(products)
	for id := range s.unsynced {
		if _, ok := s.byID[id]; !ok {
			delete(s.unsynced, id)
		}
	}
}

// Upsert inserts the product or replaces the existing entry with the same id.
func (s *Store) Upsert(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byID[p.ID]; ok {
		old := s.products[idx]
		if old.Barcode != p.Barcode {
			delete(s.byBarcode, old.Barcode)
		}
		s.products[idx] = p
		s.byBarcode[p.Barcode] = idx
		return
	}
	s.products = append(s.products, p)
	idx := len(s.products) - 1
	s.byID[p.ID] = idx
	s.byBarcode[p.Barcode] = idx
}

// ApplyStockDelta adds delta to the product's current stock, clamping at zero.
func (s *Store) ApplyStockDelta(id string, delta int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: no product with id %q", models.ErrNotFound, id)
	}
	next := s.products[idx].CurrentStock + delta
	if next < 0 {
		next = 0
	}
	s.products[idx].CurrentStock = next
	return s.products[idx], nil
}

// OverwriteStock sets the product's current stock to qty.
func (s *Store) OverwriteStock(id string, qty int) (models.Product, error) {
	if qty < 0 {
		return models.Product{}, fmt.Errorf("%w: stock for %q cannot be negative", models.ErrValidation, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: no product with id %q", models.ErrNotFound, id)
	}
	s.products[idx].CurrentStock = qty
	return s.products[idx], nil
}

// MarkOrdered stamps LastOrdered on every listed product and returns the updated records.
// Unknown ids are ignored.
func (s *Store) MarkOrdered(ids []string, at time.Time) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		idx, ok := s.byID[id]
		if !ok {
			continue
		}
		stamp := at
		s.products[idx].LastOrdered = &stamp
		updated = append(updated, s.products[idx])
	}
	return updated
}

// MarkUnsynced flags products whose local state has not been confirmed by the backend.
func (s *Store) MarkUnsynced(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			s.unsynced[id] = struct{}{}
		}
	}
}

// ClearUnsynced removes the unsynced flag from the given products.
func (s *Store) ClearUnsynced(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.unsynced, id)
	}
}

// IsUnsynced reports whether the product carries an unconfirmed local change.
func (s *Store) IsUnsynced(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.unsynced[id]
	return ok
}

// Unsynced returns the products carrying unconfirmed local changes, in catalog order.
func (s *Store) Unsynced() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if _, ok := s.unsynced[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// LowStock returns the products at or below their minimum stock.
func (s *Store) LowStock() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) replaceLocked(products []models.Product) {
	s.products = make([]models.Product, len(products))
	copy(s.products, products)
	s.byID = make(map[string]int, len(products))
	s.byBarcode = make(map[string]int, len(products))
	for i, p := range s.products {
		s.byID[p.ID] = i
		if p.Barcode != "" {
			s.byBarcode[p.Barcode] = i
		}
	}
}
