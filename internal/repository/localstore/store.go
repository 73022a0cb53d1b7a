package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

const (
	productsKey  = "catalog/products"
	suppliersKey = "suppliers"
	orderPrefix  = "po/"
	ledgerPrefix = "ledger/"
)

// Store persists the state that must survive restarts: the product cache,
// purchase order history, the supplier directory and the local ledger.
type Store struct {
	db  *pebble.DB
	seq atomic.Uint64
}

// Open opens (or creates) the Pebble database under dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// LoadProducts returns the cached catalog, or nil when nothing was saved yet.
func (s *Store) LoadProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.getJSON(productsKey, &products); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

// SaveProducts replaces the cached catalog.
func (s *Store) SaveProducts(products []models.Product) error {
	if err := s.setJSON(productsKey, products); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// LoadSuppliers returns the supplier directory.
func (s *Store) LoadSuppliers() ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := s.getJSON(suppliersKey, &suppliers); err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	return suppliers, nil
}

// SaveSuppliers replaces the supplier directory.
func (s *Store) SaveSuppliers(suppliers []models.Supplier) error {
	if err := s.setJSON(suppliersKey, suppliers); err != nil {
		return fmt.Errorf("save suppliers: %w", err)
	}
	return nil
}

// SaveOrder writes or overwrites one purchase order of the history.
func (s *Store) SaveOrder(po models.PurchaseOrder) error {
	if err := s.setJSON(orderPrefix+po.ID, po); err != nil {
		return fmt.Errorf("save purchase order %s: %w", po.ID, err)
	}
	return nil
}

// LoadOrders returns the purchase order history, newest first.
func (s *Store) LoadOrders() ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.scan(orderPrefix, func(value []byte) error {
		var po models.PurchaseOrder
		if err := json.Unmarshal(value, &po); err != nil {
			return fmt.Errorf("%w: purchase order: %v", models.ErrMalformedData, err)
		}
		orders = append(orders, po)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load purchase orders: %w", err)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })
	return orders, nil
}

// AppendLedger writes entries under time-ordered keys in a single batch.
func (s *Store) AppendLedger(entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, entry := range entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode ledger entry: %w", err)
		}
		if err := batch.Set([]byte(s.ledgerKey(entry.Timestamp)), value, nil); err != nil {
			return fmt.Errorf("stage ledger entry: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}

// Ledger returns every ledger entry of the given kind in append order.
// An empty kind returns all entries.
func (s *Store) Ledger(kind models.LedgerKind) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.scan(ledgerPrefix, func(value []byte) error {
		var entry models.LedgerEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("%w: ledger entry: %v", models.ErrMalformedData, err)
		}
		if kind == "" || entry.Kind == kind {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return entries, nil
}

func (s *Store) ledgerKey(at time.Time) string {
	return fmt.Sprintf("%s%020d/%010d", ledgerPrefix, at.UnixNano(), s.seq.Add(1))
}

func (s *Store) getJSON(key string, out any) error {
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrMalformedData, key, err)
	}
	return nil
}

func (s *Store) setJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Set([]byte(key), data, pebble.Sync)
}

func (s *Store) scan(prefix string, fn func(value []byte) error) error {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound([]byte(prefix)),
	})
	if err != nil {
		return err
	}
	defer it.Close()
	for it.First(); it.Valid(); it.Next() {
		value := append([]byte(nil), it.Value()...)
		if err := fn(value); err != nil {
			return err
		}
	}
	return it.Error()
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
