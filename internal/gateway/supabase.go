package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/pkg/clients/supabase"
)

const (
	productsTable  = "products"
	reorderTable   = "reorder_log"
	stocktakeTable = "stocktake_log"

	// defaultPageSize matches the Supabase max-rows default.
	defaultPageSize = 1000
)

// productRecord is the relational shape of a product. Every row is owned by user_id.
type productRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Barcode      string     `json:"barcode"`
	SKU          string     `json:"sku"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Supplier     string     `json:"supplier"`
	Unit         string     `json:"unit"`
	Price        float64    `json:"price"`
	Cost         float64    `json:"cost"`
	CurrentStock int        `json:"current_stock"`
	MinStock     int        `json:"min_stock"`
	ImageURL     *string    `json:"image_url"`
	LastOrdered  *time.Time `json:"last_ordered"`
}

// PostgREST rejects a bulk insert whose objects differ in keys, so the ledger
// records carry every column, zeros included.
type reorderRecord struct {
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
	ReferenceID string    `json:"reference_id"`
	ProductID   string    `json:"product_id"`
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Supplier    string    `json:"supplier"`
	Quantity    int       `json:"quantity"`
}

type stocktakeRecord struct {
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
	ReferenceID string    `json:"reference_id"`
	ProductID   string    `json:"product_id"`
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Expected    int       `json:"expected"`
	Actual      int       `json:"actual"`
	Discrepancy int       `json:"discrepancy"`
}

func toReorderRecord(e models.LedgerEntry, userID string) reorderRecord {
	return reorderRecord{
		UserID:      userID,
		Timestamp:   e.Timestamp,
		ReferenceID: e.ReferenceID,
		ProductID:   e.ProductID,
		Barcode:     e.Barcode,
		Name:        e.Name,
		Supplier:    e.Supplier,
		Quantity:    e.Quantity,
	}
}

func toStocktakeRecord(e models.LedgerEntry, userID string) stocktakeRecord {
	return stocktakeRecord{
		UserID:      userID,
		Timestamp:   e.Timestamp,
		ReferenceID: e.ReferenceID,
		ProductID:   e.ProductID,
		Barcode:     e.Barcode,
		Name:        e.Name,
		Expected:    e.Expected,
		Actual:      e.Actual,
		Discrepancy: e.Discrepancy,
	}
}

func toProductRecord(p models.Product, userID string) productRecord {
	rec := productRecord{
		ID:           p.ID,
		UserID:       userID,
		Barcode:      p.Barcode,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Supplier:     p.Supplier,
		Unit:         p.Unit,
		Price:        p.Price,
		Cost:         p.Cost,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		LastOrdered:  p.LastOrdered,
	}
	if p.ImageURL != "" {
		image := p.ImageURL
		rec.ImageURL = &image
	}
	return rec
}

func (r productRecord) product() (models.Product, error) {
	if r.ID == "" || r.Name == "" {
		return models.Product{}, fmt.Errorf("%w: record without id or name", models.ErrMalformedData)
	}
	if r.CurrentStock < 0 || r.MinStock < 0 {
		return models.Product{}, fmt.Errorf("%w: product %s has negative stock", models.ErrMalformedData, r.ID)
	}
	p := models.Product{
		ID:           r.ID,
		Barcode:      r.Barcode,
		SKU:          r.SKU,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Supplier:     r.Supplier,
		Unit:         r.Unit,
		Price:        r.Price,
		Cost:         r.Cost,
		CurrentStock: r.CurrentStock,
		MinStock:     r.MinStock,
		LastOrdered:  r.LastOrdered,
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	return p, nil
}

// SupabaseBackend stores the catalog in Postgres through PostgREST with per-user rows.
type SupabaseBackend struct {
	client   supabase.Client
	avail    availability
	pageSize int
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewSupabaseBackend builds the Supabase database backend.
func NewSupabaseBackend(client supabase.Client, missing []string, reg *metrics.Registry, logger *zap.Logger) *SupabaseBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseBackend{
		client:   client,
		avail:    availability{missing: missing},
		pageSize: defaultPageSize,
		metrics:  reg,
		logger:   logger,
	}
}

func (b *SupabaseBackend) Kind() Kind   { return KindDatabase }
func (b *SupabaseBackend) Name() string { return "supabase" }

func (b *SupabaseBackend) FetchProducts(ctx context.Context) ([]models.Product, error) {
	session, err := b.session(ctx)
	if err != nil {
		return nil, err
	}

	raws, err := b.selectAll(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(raws))
	for i, raw := range raws {
		var rec productRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			b.skip(i, fmt.Errorf("%w: %v", models.ErrMalformedData, err))
			continue
		}
		p, err := rec.product()
		if err != nil {
			b.skip(i, err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// selectAll pages through the products table. The server caps a single
// response at its max-rows setting, so one unpaged select can come back short.
func (b *SupabaseBackend) selectAll(ctx context.Context, userID string) ([]json.RawMessage, error) {
	pageSize := b.pageSize
	var all []json.RawMessage
	for offset := 0; ; offset += pageSize {
		query := url.Values{}
		query.Set("select", "*")
		query.Set("user_id", "eq."+userID)
		query.Set("order", "name.asc,id.asc")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		page, err := b.client.Select(ctx, productsTable, query)
		if err != nil {
			return nil, unavailable("select products", err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// PersistProducts upserts every product in one request; PostgREST runs it as a
// single statement so the write is all-or-nothing.
func (b *SupabaseBackend) PersistProducts(ctx context.Context, products []models.Product) error {
	session, err := b.session(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}

	records := make([]productRecord, 0, len(products))
	for _, p := range products {
		records = append(records, toProductRecord(p, session.UserID))
	}
	if err := b.client.Upsert(ctx, productsTable, "user_id,id", records); err != nil {
		return unavailable("upsert products", err)
	}
	return nil
}

func (b *SupabaseBackend) PersistSingleProduct(ctx context.Context, product models.Product) error {
	session, err := b.session(ctx)
	if err != nil {
		return err
	}
	records := []productRecord{toProductRecord(product, session.UserID)}
	if err := b.client.Upsert(ctx, productsTable, "user_id,id", records); err != nil {
		return unavailable("upsert product "+product.ID, err)
	}
	return nil
}

func (b *SupabaseBackend) AppendLedger(ctx context.Context, entries []models.LedgerEntry) error {
	session, err := b.session(ctx)
	if err != nil {
		return err
	}

	var (
		orders []reorderRecord
		counts []stocktakeRecord
	)
	for _, e := range entries {
		if e.Kind == models.LedgerStocktake {
			counts = append(counts, toStocktakeRecord(e, session.UserID))
		} else {
			orders = append(orders, toReorderRecord(e, session.UserID))
		}
	}
	if len(orders) > 0 {
		if err := b.client.Insert(ctx, reorderTable, orders); err != nil {
			return unavailable("insert reorder ledger", err)
		}
	}
	if len(counts) > 0 {
		if err := b.client.Insert(ctx, stocktakeTable, counts); err != nil {
			return unavailable("insert stocktake ledger", err)
		}
	}
	return nil
}

func (b *SupabaseBackend) CheckConfiguration(ctx context.Context) ConfigStatus {
	status := b.avail.status(b.Name(), KindDatabase)
	if !status.OK {
		return status
	}
	if _, err := b.client.SignIn(ctx); err != nil {
		status.OK = false
		status.Detail = err.Error()
	}
	return status
}

func (b *SupabaseBackend) session(ctx context.Context) (supabase.Session, error) {
	if err := b.avail.check(b.Name()); err != nil {
		return supabase.Session{}, err
	}
	session, err := b.client.SignIn(ctx)
	if err != nil {
		return supabase.Session{}, unavailable("sign in", err)
	}
	return session, nil
}

func (b *SupabaseBackend) skip(index int, err error) {
	b.logger.Warn("skip product record", zap.Int("index", index), zap.Error(err))
	countMalformed(b.metrics, b.Name())
}
