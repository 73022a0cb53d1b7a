package gateway

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/repository/mongodb"
)

// MongoStore is the subset of the MongoDB repository used by MongoBackend.
type MongoStore interface {
	Ping(ctx context.Context) error
	Transactional(ctx context.Context) (bool, error)
	FindProducts(ctx context.Context, userID string) ([]bson.Raw, error)
	UpsertProducts(ctx context.Context, docs []mongodb.ProductDocument) error
	UpsertProduct(ctx context.Context, doc mongodb.ProductDocument) error
	InsertLedger(ctx context.Context, docs []mongodb.LedgerDocument) error
}

// MongoBackend stores the catalog as per-user documents in MongoDB.
type MongoBackend struct {
	store   MongoStore
	userID  string
	avail   availability
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewMongoBackend builds the MongoDB database backend.
func NewMongoBackend(store MongoStore, userID string, missing []string, initErr error, reg *metrics.Registry, logger *zap.Logger) *MongoBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil && len(missing) == 0 && initErr == nil {
		initErr = fmt.Errorf("mongodb repository not initialized")
	}
	return &MongoBackend{
		store:   store,
		userID:  userID,
		avail:   availability{missing: missing, initErr: initErr},
		metrics: reg,
		logger:  logger,
	}
}

func (b *MongoBackend) Kind() Kind   { return KindDatabase }
func (b *MongoBackend) Name() string { return "mongo" }

func (b *MongoBackend) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if err := b.avail.check(b.Name()); err != nil {
		return nil, err
	}

	raws, err := b.store.FindProducts(ctx, b.userID)
	if err != nil {
		return nil, unavailable("find products", err)
	}

	products := make([]models.Product, 0, len(raws))
	for i, raw := range raws {
		var doc mongodb.ProductDocument
		if err := bson.Unmarshal(raw, &doc); err != nil {
			b.skip(i, fmt.Errorf("%w: %v", models.ErrMalformedData, err))
			continue
		}
		if doc.ID == "" || doc.Name == "" || doc.CurrentStock < 0 || doc.MinStock < 0 {
			b.skip(i, fmt.Errorf("%w: document %s is incomplete", models.ErrMalformedData, doc.DocID))
			continue
		}
		products = append(products, doc.Product)
	}
	return products, nil
}

func (b *MongoBackend) PersistProducts(ctx context.Context, products []models.Product) error {
	if err := b.avail.check(b.Name()); err != nil {
		return err
	}
	docs := make([]mongodb.ProductDocument, 0, len(products))
	for _, p := range products {
		docs = append(docs, mongodb.NewProductDocument(b.userID, p))
	}
	if err := b.store.UpsertProducts(ctx, docs); err != nil {
		return unavailable("upsert products", err)
	}
	return nil
}

func (b *MongoBackend) PersistSingleProduct(ctx context.Context, product models.Product) error {
	if err := b.avail.check(b.Name()); err != nil {
		return err
	}
	if err := b.store.UpsertProduct(ctx, mongodb.NewProductDocument(b.userID, product)); err != nil {
		return unavailable("upsert product "+product.ID, err)
	}
	return nil
}

func (b *MongoBackend) AppendLedger(ctx context.Context, entries []models.LedgerEntry) error {
	if err := b.avail.check(b.Name()); err != nil {
		return err
	}
	docs := make([]mongodb.LedgerDocument, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, mongodb.LedgerDocument{UserID: b.userID, LedgerEntry: e})
	}
	if err := b.store.InsertLedger(ctx, docs); err != nil {
		return unavailable("insert ledger", err)
	}
	return nil
}

func (b *MongoBackend) CheckConfiguration(ctx context.Context) ConfigStatus {
	status := b.avail.status(b.Name(), KindDatabase)
	if !status.OK {
		return status
	}
	if err := b.store.Ping(ctx); err != nil {
		status.OK = false
		status.Detail = err.Error()
		return status
	}
	if transactional, err := b.store.Transactional(ctx); err == nil && !transactional {
		status.Detail = "standalone server: full catalog writes are not atomic, use a replica set"
	}
	return status
}

func (b *MongoBackend) skip(index int, err error) {
	b.logger.Warn("skip product document", zap.Int("index", index), zap.Error(err))
	countMalformed(b.metrics, b.Name())
}
