package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// LocalStore is the persisted cache the local backend reads and writes.
type LocalStore interface {
	LoadProducts() ([]models.Product, error)
	SaveProducts(products []models.Product) error
	AppendLedger(entries []models.LedgerEntry) error
}

// LocalBackend keeps everything in the on-device store. It makes no network calls.
type LocalBackend struct {
	store  LocalStore
	logger *zap.Logger
}

// NewLocalBackend builds the local-only backend.
func NewLocalBackend(store LocalStore, logger *zap.Logger) *LocalBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBackend{store: store, logger: logger}
}

func (b *LocalBackend) Kind() Kind   { return KindLocal }
func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) FetchProducts(_ context.Context) ([]models.Product, error) {
	products, err := b.store.LoadProducts()
	if err != nil {
		return nil, unavailable("load local products", err)
	}
	return products, nil
}

func (b *LocalBackend) PersistProducts(_ context.Context, products []models.Product) error {
	if err := b.store.SaveProducts(products); err != nil {
		return unavailable("save local products", err)
	}
	return nil
}

func (b *LocalBackend) PersistSingleProduct(_ context.Context, product models.Product) error {
	products, err := b.store.LoadProducts()
	if err != nil {
		return unavailable("load local products", err)
	}
	replaced := false
	for i := range products {
		if products[i].ID == product.ID {
			products[i] = product
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, product)
	}
	if err := b.store.SaveProducts(products); err != nil {
		return unavailable("save local products", err)
	}
	return nil
}

func (b *LocalBackend) AppendLedger(_ context.Context, entries []models.LedgerEntry) error {
	if err := b.store.AppendLedger(entries); err != nil {
		return unavailable("append local ledger", err)
	}
	return nil
}

func (b *LocalBackend) CheckConfiguration(_ context.Context) ConfigStatus {
	return ConfigStatus{Backend: b.Name(), Kind: KindLocal, OK: true}
}
