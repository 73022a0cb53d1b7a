package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/metrics"
)

// Kind tags the variant of system of record behind the gateway.
type Kind string

const (
	KindLocal    Kind = "local"
	KindSheets   Kind = "sheets"
	KindDatabase Kind = "database"
)

// ConfigStatus reports whether a backend has what it needs to operate.
type ConfigStatus struct {
	Backend string   `json:"backend"`
	Kind    Kind     `json:"kind"`
	OK      bool     `json:"ok"`
	Missing []string `json:"missing"`
	Detail  string   `json:"detail,omitempty"`
}

// Backend is implemented once per destination. Implementations surface
// models.ErrBackendUnavailable for transport, auth and configuration failures
// and skip undecodable records instead of failing the whole fetch.
type Backend interface {
	Kind() Kind
	Name() string
	FetchProducts(ctx context.Context) ([]models.Product, error)
	// PersistProducts writes the full catalog. Sheets replaces the whole range,
	// databases upsert.
	PersistProducts(ctx context.Context, products []models.Product) error
	PersistSingleProduct(ctx context.Context, product models.Product) error
	AppendLedger(ctx context.Context, entries []models.LedgerEntry) error
	CheckConfiguration(ctx context.Context) ConfigStatus
}

// SyncReport describes what a record call wrote. It is returned on the error
// path too: a stocktake can reach the ledger and then fail on the products.
type SyncReport struct {
	ProductsWritten int
	// Ledger holds the entries the backend accepted.
	Ledger    []models.LedgerEntry
	LedgerErr error
}

// Partial reports whether products were written but the ledger was not.
func (r SyncReport) Partial() bool { return r.LedgerErr != nil }

// LedgerRecorded reports whether the ledger append reached the backend.
func (r SyncReport) LedgerRecorded() bool { return len(r.Ledger) > 0 }

// StampPrecision is the finest time resolution every backend stores. Mongo
// keeps milliseconds, so timestamps are truncated before they are written.
const StampPrecision = time.Millisecond

// Gateway forwards committed data to exactly one backend. It never retries.
type Gateway struct {
	backend Backend
	metrics *metrics.Registry
	logger  *zap.Logger
	now     func() time.Time
}

// New wraps backend. A nil registry disables metrics.
func New(backend Backend, reg *metrics.Registry, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		backend: backend,
		metrics: reg,
		logger:  logger.With(zap.String("backend", backend.Name())),
		now:     time.Now,
	}
}

// Kind returns the variant of the wrapped backend.
func (g *Gateway) Kind() Kind { return g.backend.Kind() }

// Name returns the wrapped backend's name.
func (g *Gateway) Name() string { return g.backend.Name() }

// FetchProducts retrieves the full catalog.
func (g *Gateway) FetchProducts(ctx context.Context) ([]models.Product, error) {
	products, err := g.backend.FetchProducts(ctx)
	g.observe("fetch_products", err)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("products fetched", zap.Int("count", len(products)))
	return products, nil
}

// PersistProducts writes the full catalog.
func (g *Gateway) PersistProducts(ctx context.Context, products []models.Product) error {
	if err := validateAll(products); err != nil {
		return err
	}
	err := g.backend.PersistProducts(ctx, products)
	g.observe("persist_products", err)
	return err
}

// PersistSingleProduct updates the product in place or appends it.
func (g *Gateway) PersistSingleProduct(ctx context.Context, product models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	err := g.backend.PersistSingleProduct(ctx, product)
	g.observe("persist_single_product", err)
	return err
}

// RecordOrder persists the products touched by the order, then appends one ledger
// entry per item. A ledger failure is reported in the SyncReport, never as an error.
func (g *Gateway) RecordOrder(ctx context.Context, po models.PurchaseOrder, items []models.OrderItem, touched []models.Product) (SyncReport, error) {
	var report SyncReport
	for _, p := range touched {
		if err := g.PersistSingleProduct(ctx, p); err != nil {
			return report, fmt.Errorf("record order %s: persist product %s: %w", po.ID, p.ID, err)
		}
		report.ProductsWritten++
	}

	entries := models.OrderLedgerEntries(po, items, g.stamp())
	report.LedgerErr = g.appendLedger(ctx, models.LedgerOrder, entries)
	if report.LedgerErr == nil {
		report.Ledger = entries
	}
	return report, nil
}

// RecordStocktake appends the stocktake ledger (best-effort) and then writes the
// catalog carrying the counted stock levels. When products fail after the
// ledger was written the report still lists the appended entries.
func (g *Gateway) RecordStocktake(ctx context.Context, sessionID string, items []models.StocktakeItem, catalog []models.Product) (SyncReport, error) {
	var report SyncReport

	entries := models.StocktakeLedgerEntries(sessionID, items, g.stamp())
	report.LedgerErr = g.appendLedger(ctx, models.LedgerStocktake, entries)
	if report.LedgerErr == nil {
		report.Ledger = entries
	}

	if err := g.PersistProducts(ctx, catalog); err != nil {
		return report, fmt.Errorf("record stocktake %s: %w", sessionID, err)
	}
	report.ProductsWritten = len(catalog)
	return report, nil
}

// CheckConfiguration reports missing settings and, when complete, whether the
// backend is reachable.
func (g *Gateway) CheckConfiguration(ctx context.Context) ConfigStatus {
	status := g.backend.CheckConfiguration(ctx)
	if status.Missing == nil {
		status.Missing = []string{}
	}
	result := "ok"
	if !status.OK {
		result = "error"
	}
	if g.metrics != nil {
		g.metrics.GatewayCalls.WithLabelValues(g.backend.Name(), "check_configuration", result).Inc()
	}
	return status
}

func (g *Gateway) stamp() time.Time {
	return g.now().UTC().Truncate(StampPrecision)
}

func (g *Gateway) appendLedger(ctx context.Context, kind models.LedgerKind, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := g.backend.AppendLedger(ctx, entries)
	g.observe("append_ledger", err)
	if err != nil {
		g.logger.Warn("ledger write failed", zap.String("kind", string(kind)), zap.Int("entries", len(entries)), zap.Error(err))
		if g.metrics != nil {
			g.metrics.LedgerFailures.WithLabelValues(g.backend.Name(), string(kind)).Inc()
		}
	}
	return err
}

func (g *Gateway) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		g.logger.Error("gateway call failed", zap.String("op", op), zap.Error(err))
	}
	if g.metrics != nil {
		g.metrics.GatewayCalls.WithLabelValues(g.backend.Name(), op, result).Inc()
	}
}

func validateAll(products []models.Product) error {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if p.ID == "" {
			return fmt.Errorf("%w: product %q has no id", models.ErrValidation, p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate product id %q", models.ErrValidation, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// availability tracks configuration gaps and construction failures of a backend.
type availability struct {
	missing []string
	initErr error
}

func (a availability) check(backend string) error {
	if len(a.missing) > 0 {
		return fmt.Errorf("%w: %s backend missing %s", models.ErrBackendUnavailable, backend, strings.Join(a.missing, ", "))
	}
	if a.initErr != nil {
		return fmt.Errorf("%w: %s backend: %w", models.ErrBackendUnavailable, backend, a.initErr)
	}
	return nil
}

func (a availability) status(name string, kind Kind) ConfigStatus {
	status := ConfigStatus{Backend: name, Kind: kind, OK: true, Missing: a.missing}
	if len(a.missing) > 0 {
		status.OK = false
	}
	if a.initErr != nil {
		status.OK = false
		status.Detail = a.initErr.Error()
	}
	return status
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrBackendUnavailable, op, err)
}

func countMalformed(reg *metrics.Registry, backend string) {
	if reg != nil {
		reg.MalformedRecords.WithLabelValues(backend).Inc()
	}
}
