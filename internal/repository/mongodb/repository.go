package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

const (
	productsCollection  = "products"
	reorderCollection   = "reorder_log"
	stocktakeCollection = "stocktake_log"
)

// ProductDocument is a product as stored in MongoDB. The document id combines
// owner and product id so two users may reuse product ids.
type ProductDocument struct {
	DocID          string `bson:"_id"`
	UserID         string `bson:"user_id"`
	models.Product `bson:",inline"`
}

// LedgerDocument is one ledger entry owned by a user.
type LedgerDocument struct {
	UserID             string `bson:"user_id"`
	models.LedgerEntry `bson:",inline"`
}

// NewProductDocument wraps p for storage under userID.
func NewProductDocument(userID string, p models.Product) ProductDocument {
	return ProductDocument{DocID: userID + ":" + p.ID, UserID: userID, Product: p}
}

// MongoDBRepository stores catalog and ledger documents for one database.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string

	mu            sync.Mutex
	transactional *bool
}

// NewMongoDBRepository creates a new MongoDB repository. The driver connects
// lazily; Ping verifies reachability.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// Ping verifies the connection.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// Transactional reports whether the deployment is a replica set or sharded
// cluster. Standalone servers reject multi-document transactions. The answer
// is cached after the first successful probe.
func (r *MongoDBRepository) Transactional(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transactional != nil {
		return *r.transactional, nil
	}

	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := r.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return false, fmt.Errorf("failed to inspect deployment: %w", err)
	}
	ok := hello.SetName != "" || hello.Msg == "isdbgrid"
	r.transactional = &ok
	return ok, nil
}

// FindProducts returns the raw product documents owned by userID so callers can
// skip the ones that fail to decode.
func (r *MongoDBRepository) FindProducts(ctx context.Context, userID string) ([]bson.Raw, error) {
	cursor, err := r.collection(productsCollection).Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		docs = append(docs, append(bson.Raw(nil), cursor.Current...))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return docs, nil
}

// UpsertProducts replaces or inserts every document inside one transaction. On
// a standalone server it falls back to an unordered bulk write, which is not
// atomic.
func (r *MongoDBRepository) UpsertProducts(ctx context.Context, docs []ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.DocID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	transactional, err := r.Transactional(ctx)
	if err != nil {
		return err
	}
	if !transactional {
		if _, err := r.collection(productsCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("failed to upsert products: %w", err)
		}
		return nil
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.collection(productsCollection).BulkWrite(sc, writes, options.BulkWrite().SetOrdered(true))
	})
	if err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

// UpsertProduct replaces or inserts a single document.
func (r *MongoDBRepository) UpsertProduct(ctx context.Context, doc ProductDocument) error {
	_, err := r.collection(productsCollection).ReplaceOne(ctx, bson.M{"_id": doc.DocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", doc.ID, err)
	}
	return nil
}

// InsertLedger appends ledger documents to the collection matching their kind.
func (r *MongoDBRepository) InsertLedger(ctx context.Context, docs []LedgerDocument) error {
	var orders, counts []interface{}
	for _, doc := range docs {
		if doc.Kind == models.LedgerStocktake {
			counts = append(counts, doc)
		} else {
			orders = append(orders, doc)
		}
	}
	if len(orders) > 0 {
		if _, err := r.collection(reorderCollection).InsertMany(ctx, orders); err != nil {
			return fmt.Errorf("failed to insert reorder ledger: %w", err)
		}
	}
	if len(counts) > 0 {
		if _, err := r.collection(stocktakeCollection).InsertMany(ctx, counts); err != nil {
			return fmt.Errorf("failed to insert stocktake ledger: %w", err)
		}
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}
