package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/catalog"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/gateway"
	"github.com/mamadbah2/stockroom/internal/metrics"
)

// Syncer is the subset of the sync gateway the service depends on.
type Syncer interface {
	Kind() gateway.Kind
	FetchProducts(ctx context.Context) ([]models.Product, error)
	PersistProducts(ctx context.Context, products []models.Product) error
	PersistSingleProduct(ctx context.Context, product models.Product) error
	RecordOrder(ctx context.Context, po models.PurchaseOrder, items []models.OrderItem, touched []models.Product) (gateway.SyncReport, error)
	RecordStocktake(ctx context.Context, sessionID string, items []models.StocktakeItem, catalog []models.Product) (gateway.SyncReport, error)
	CheckConfiguration(ctx context.Context) gateway.ConfigStatus
}

// LocalState is the on-device store holding the catalog cache, the supplier
// directory and the purchase order history.
type LocalState interface {
	LoadProducts() ([]models.Product, error)
	SaveProducts(products []models.Product) error
	LoadSuppliers() ([]models.Supplier, error)
	SaveSuppliers(suppliers []models.Supplier) error
	LoadOrders() ([]models.PurchaseOrder, error)
	SaveOrder(po models.PurchaseOrder) error
	AppendLedger(entries []models.LedgerEntry) error
}

// Notifier is told about purchase orders once they are submitted.
type Notifier interface {
	OrdersSubmitted(ctx context.Context, orders []models.PurchaseOrder) error
}

// SubmitResult describes a submit that reached the backend. Warnings list the
// parts that failed without failing the submit, such as a ledger write.
// LedgerRecorded is set for a stocktake whose ledger reached the backend, also
// when the submit then failed on the products.
type SubmitResult struct {
	Orders         []models.PurchaseOrder `json:"orders,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	Counted        []models.StocktakeItem `json:"counted,omitempty"`
	LedgerRecorded bool                   `json:"ledger_recorded"`
	Warnings       []string               `json:"warnings"`
}

// ledgeredStocktake is a stocktake session whose ledger was appended while its
// products were not written. Resubmitting the same counts reuses it.
type ledgeredStocktake struct {
	id    string
	items []models.StocktakeItem
}

// Service owns the catalog and the pending order and stocktake of one
// operator. Callers are serialized; a second submit while one is in flight is
// rejected with models.ErrSubmitInProgress.
type Service struct {
	mu         sync.Mutex
	submitting atomic.Bool

	catalog   *catalog.Store
	order     *Order
	stocktake *Stocktake
	suppliers []models.Supplier
	history   []models.PurchaseOrder
	ledgered  *ledgeredStocktake

	backend  Syncer
	local    LocalState
	notifier Notifier
	metrics  *metrics.Registry
	logger   *zap.Logger

	now   func() time.Time
	newID IDGenerator
}

// NewService wires an inventory service. notifier and reg may be nil.
func NewService(syncer Syncer, local LocalState, notifier Notifier, reg *metrics.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   catalog.NewStore(nil),
		order:     NewOrder(),
		stocktake: NewStocktake(),
		backend:   syncer,
		local:     local,
		notifier:  notifier,
		metrics:   reg,
		logger:    logger,
		now:       time.Now,
		newID:     NewOrderID,
	}
}

// LoadCache restores the catalog, suppliers and order history saved by a
// previous run so the service works before the first successful Refresh.
func (s *Service) LoadCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.local.LoadProducts()
	if err != nil {
		return fmt.Errorf("load cached products: %w", err)
	}
	suppliers, err := s.local.LoadSuppliers()
	if err != nil {
		return fmt.Errorf("load suppliers: %w", err)
	}
	orders, err := s.local.LoadOrders()
	if err != nil {
		return fmt.Errorf("load purchase orders: %w", err)
	}

	s.catalog.Replace(products)
	s.suppliers = suppliers
	s.history = orders
	s.observeCatalog()
	s.logger.Info("local cache loaded",
		zap.Int("products", len(products)),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("purchase_orders", len(orders)),
	)
	return nil
}

// Refresh pushes products with unconfirmed local changes, then replaces the
// catalog with the backend's list. If the push fails the local list is kept.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pushUnsynced(ctx); err != nil {
		return fmt.Errorf("refresh: push unsynced products: %w", err)
	}

	products, err := s.backend.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	s.catalog.Replace(products)
	s.saveCache()
	s.observeCatalog()
	s.logger.Info("catalog refreshed", zap.Int("products", len(products)))
	return nil
}

func (s *Service) pushUnsynced(ctx context.Context) error {
	for _, p := range s.catalog.Unsynced() {
		if err := s.backend.PersistSingleProduct(ctx, p); err != nil {
			return fmt.Errorf("product %s: %w", p.ID, err)
		}
		s.catalog.ClearUnsynced(p.ID)
	}
	return nil
}

// Products returns the catalog in its current order.
func (s *Service) Products() []models.Product {
	return s.catalog.All()
}

// Product returns the product with the given id.
func (s *Service) Product(id string) (models.Product, error) {
	return s.catalog.GetByID(id)
}

// LookupBarcode returns the product carrying barcode.
func (s *Service) LookupBarcode(barcode string) (models.Product, error) {
	return s.catalog.GetByBarcode(strings.TrimSpace(barcode))
}

// LowStock returns the products at or below their minimum stock.
func (s *Service) LowStock() []models.Product {
	return s.catalog.LowStock()
}

// Unsynced returns the products whose last change the backend has not confirmed.
func (s *Service) Unsynced() []models.Product {
	return s.catalog.Unsynced()
}

// SaveProduct creates or updates a product. The catalog is updated first; when the
// backend rejects the write the change is kept locally and the error returned.
func (s *Service) SaveProduct(ctx context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	p = truncateStamp(p)
	if existing, err := s.catalog.GetByBarcode(p.Barcode); err == nil && existing.ID != p.ID {
		return models.Product{}, fmt.Errorf("%w: barcode %s already belongs to %q", models.ErrValidation, p.Barcode, existing.Name)
	}

	s.catalog.Upsert(p)
	s.observeCatalog()
	err := s.backend.PersistSingleProduct(ctx, p)
	s.reconcile(err, p.ID)
	if err != nil {
		return p, fmt.Errorf("save product %s: %w", p.ID, err)
	}
	return p, nil
}

// ImportProducts replaces the catalog with products and writes it to the backend.
func (s *Service) ImportProducts(ctx context.Context, products []models.Product) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepared := make([]models.Product, 0, len(products))
	ids := make(map[string]struct{}, len(products))
	barcodes := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if p.ID == "" {
			p.ID = s.newID()
		}
		p = truncateStamp(p)
		if _, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", models.ErrValidation, p.ID)
		}
		if _, dup := barcodes[p.Barcode]; dup {
			return nil, fmt.Errorf("%w: duplicate barcode %q", models.ErrValidation, p.Barcode)
		}
		ids[p.ID] = struct{}{}
		barcodes[p.Barcode] = struct{}{}
		prepared = append(prepared, p)
	}

	s.catalog.Replace(prepared)
	s.observeCatalog()
	err := s.backend.PersistProducts(ctx, prepared)
	s.reconcile(err, productIDs(prepared)...)
	if err != nil {
		return prepared, fmt.Errorf("import products: %w", err)
	}
	s.logger.Info("products imported", zap.Int("count", len(prepared)))
	return prepared, nil
}

// AddToOrder adds quantity of the product identified by barcode or id to the
// pending order, merging with an existing line.
func (s *Service) AddToOrder(ref string, quantity int) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	s.order.AddItem(p, quantity)
	return s.order.Items(), nil
}

// UpdateOrderQuantity replaces the quantity of a pending order line.
func (s *Service) UpdateOrderQuantity(productID string, quantity int) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}
	if !s.order.Has(productID) {
		return nil, fmt.Errorf("%w: product %q is not in the pending order", models.ErrNotFound, productID)
	}
	s.order.UpdateQuantity(productID, quantity)
	return s.order.Items(), nil
}

// RemoveFromOrder drops a pending order line. Removing an absent line is a no-op.
func (s *Service) RemoveFromOrder(productID string) []models.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.RemoveItem(productID)
	return s.order.Items()
}

// ClearOrder empties the pending order.
func (s *Service) ClearOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Clear()
}

// PendingOrder returns the pending order lines.
func (s *Service) PendingOrder() []models.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Items()
}

// AddToStocktake records a count for the product identified by barcode or id.
// A product already counted keeps its first count.
func (s *Service) AddToStocktake(ref string, counted int) ([]models.StocktakeItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if counted < 0 {
		return nil, fmt.Errorf("%w: counted quantity must not be negative", models.ErrValidation)
	}
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	if !s.stocktake.AddItem(p, counted) {
		s.logger.Debug("product already counted", zap.String("product_id", p.ID))
	}
	return s.stocktake.Items(), nil
}

// UpdateStocktakeQuantity replaces the counted quantity of an entry.
func (s *Service) UpdateStocktakeQuantity(productID string, counted int) ([]models.StocktakeItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if counted < 0 {
		return nil, fmt.Errorf("%w: counted quantity must not be negative", models.ErrValidation)
	}
	if !s.stocktake.Has(productID) {
		return nil, fmt.Errorf("%w: product %q is not in the stocktake", models.ErrNotFound, productID)
	}
	s.stocktake.UpdateQuantity(productID, counted)
	return s.stocktake.Items(), nil
}

// RemoveFromStocktake drops an entry. Removing an absent entry is a no-op.
func (s *Service) RemoveFromStocktake(productID string) []models.StocktakeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocktake.RemoveItem(productID)
	return s.stocktake.Items()
}

// ClearStocktake empties the pending stocktake.
func (s *Service) ClearStocktake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocktake.Clear()
	s.ledgered = nil
}

// PendingStocktake returns the pending stocktake entries.
func (s *Service) PendingStocktake() []models.StocktakeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stocktake.Items()
}

// SubmitOrder splits the pending order into one purchase order per supplier and
// records each one. Lines of purchase orders the backend accepted leave the
// pending order; lines of a failed purchase order stay so the caller can retry.
func (s *Service) SubmitOrder(ctx context.Context, notes string) (SubmitResult, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return SubmitResult{}, models.ErrSubmitInProgress
	}
	defer s.submitting.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := SubmitResult{Warnings: []string{}}
	items := s.order.Items()
	if len(items) == 0 {
		return result, fmt.Errorf("%w: pending order is empty", models.ErrValidation)
	}

	now := s.now().UTC().Truncate(gateway.StampPrecision)
	orders := Partition(items, s.suppliers, now, s.newID)
	var errs []error
	for i := range orders {
		po := orders[i]
		po.Notes = strings.TrimSpace(notes)
		ids := orderProductIDs(po.Items)

		touched := s.catalog.MarkOrdered(ids, now)
		report, err := s.backend.RecordOrder(ctx, po, po.Items, touched)
		s.reconcile(err, ids...)
		if err != nil {
			s.logger.Error("purchase order not recorded", zap.String("po_id", po.ID), zap.String("supplier", po.SupplierName), zap.Error(err))
			errs = append(errs, fmt.Errorf("purchase order for %s: %w", po.SupplierName, err))
			continue
		}

		if err := po.Transition(models.OrderSubmitted); err != nil {
			return result, err
		}
		if report.Partial() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("purchase order %s recorded without ledger: %v", po.ID, report.LedgerErr))
		}
		if err := s.local.SaveOrder(po); err != nil {
			s.logger.Warn("purchase order not kept in history", zap.String("po_id", po.ID), zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("purchase order %s not saved to history: %v", po.ID, err))
		}
		s.mirrorLedger(report.Ledger)
		s.history = append([]models.PurchaseOrder{po}, s.history...)
		for _, id := range ids {
			s.order.RemoveItem(id)
		}
		result.Orders = append(result.Orders, po)
	}

	if len(result.Orders) > 0 && s.notifier != nil {
		if err := s.notifier.OrdersSubmitted(ctx, result.Orders); err != nil {
			s.logger.Warn("order notification failed", zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("notification not sent: %v", err))
		}
	}

	if len(errs) > 0 {
		s.countSubmit("order", "error")
		return result, fmt.Errorf("submit order: %w", errors.Join(errs...))
	}
	s.countSubmit("order", outcome(result))
	s.logger.Info("order submitted", zap.Int("purchase_orders", len(result.Orders)), zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// SubmitStocktake overwrites the stock of every counted product and records the
// session. On failure the pending stocktake is kept.
func (s *Service) SubmitStocktake(ctx context.Context) (SubmitResult, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return SubmitResult{}, models.ErrSubmitInProgress
	}
	defer s.submitting.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := SubmitResult{Warnings: []string{}}
	items := s.stocktake.Items()
	if len(items) == 0 {
		return result, fmt.Errorf("%w: pending stocktake is empty", models.ErrValidation)
	}

	counted := make([]models.StocktakeItem, 0, len(items))
	for _, item := range items {
		if _, err := s.catalog.OverwriteStock(item.ProductID, item.ActualQuantity); err != nil {
			s.logger.Warn("counted product left the catalog", zap.String("product_id", item.ProductID), zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("product %s skipped: %v", item.ProductID, err))
			continue
		}
		counted = append(counted, item)
	}
	ids := stocktakeProductIDs(counted)

	var (
		sessionID string
		report    gateway.SyncReport
		err       error
	)
	if prior := s.ledgered; prior != nil && sameCounts(prior.items, counted) {
		// ledger already appended by the failed attempt, only the products are due
		sessionID = prior.id
		err = s.backend.PersistProducts(ctx, s.catalog.All())
		result.LedgerRecorded = true
	} else {
		sessionID = s.newID()
		report, err = s.backend.RecordStocktake(ctx, sessionID, counted, s.catalog.All())
		s.mirrorLedger(report.Ledger)
		result.LedgerRecorded = report.LedgerRecorded()
	}
	s.reconcile(err, ids...)
	result.SessionID = sessionID

	if err != nil {
		if report.LedgerRecorded() {
			s.ledgered = &ledgeredStocktake{id: sessionID, items: counted}
		}
		if result.LedgerRecorded {
			result.Warnings = append(result.Warnings, fmt.Sprintf("stocktake %s ledger recorded, products not written", sessionID))
			s.countSubmit("stocktake", "partial")
		} else {
			s.countSubmit("stocktake", "error")
		}
		return result, fmt.Errorf("submit stocktake: %w", err)
	}
	if report.Partial() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("stocktake %s recorded without ledger: %v", sessionID, report.LedgerErr))
	}

	mismatched := len(s.stocktake.Changed())
	s.stocktake.Clear()
	s.ledgered = nil
	result.Counted = counted
	s.countSubmit("stocktake", outcome(result))
	s.logger.Info("stocktake submitted", zap.String("session_id", sessionID), zap.Int("counted", len(counted)), zap.Int("mismatched", mismatched))
	return result, nil
}

// ReceiveOrder marks a submitted purchase order as received and adds its
// quantities to stock.
func (s *Service) ReceiveOrder(ctx context.Context, poID string) (models.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.history {
		if s.history[i].ID == poID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.PurchaseOrder{}, fmt.Errorf("%w: no purchase order %q", models.ErrNotFound, poID)
	}

	po := s.history[idx]
	if err := po.Transition(models.OrderReceived); err != nil {
		return models.PurchaseOrder{}, err
	}

	var touched []models.Product
	for _, item := range po.Items {
		p, err := s.catalog.ApplyStockDelta(item.ProductID, item.Quantity)
		if err != nil {
			s.logger.Warn("received product left the catalog", zap.String("product_id", item.ProductID), zap.Error(err))
			continue
		}
		touched = append(touched, p)
	}

	s.history[idx] = po
	if err := s.local.SaveOrder(po); err != nil {
		s.logger.Warn("purchase order status not saved", zap.String("po_id", po.ID), zap.Error(err))
	}

	var errs []error
	for _, p := range touched {
		err := s.backend.PersistSingleProduct(ctx, p)
		s.reconcile(err, p.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("product %s: %w", p.ID, err))
		}
	}
	if len(errs) > 0 {
		return po, fmt.Errorf("receive order %s: %w", po.ID, errors.Join(errs...))
	}
	s.logger.Info("purchase order received", zap.String("po_id", po.ID), zap.Int("products", len(touched)))
	return po, nil
}

// PurchaseOrders returns the purchase order history, newest first.
func (s *Service) PurchaseOrders() []models.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PurchaseOrder, len(s.history))
	copy(out, s.history)
	return out
}

// Suppliers returns the supplier directory.
func (s *Service) Suppliers() []models.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Supplier, len(s.suppliers))
	copy(out, s.suppliers)
	return out
}

// SaveSupplier creates or updates a directory entry.
func (s *Service) SaveSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return models.Supplier{}, fmt.Errorf("%w: supplier name must be provided", models.ErrValidation)
	}
	if supplier.ID == "" {
		supplier.ID = s.newID()
	}

	next := make([]models.Supplier, 0, len(s.suppliers)+1)
	replaced := false
	for _, existing := range s.suppliers {
		if existing.ID == supplier.ID {
			next = append(next, supplier)
			replaced = true
			continue
		}
		if existing.Name == supplier.Name {
			return models.Supplier{}, fmt.Errorf("%w: supplier %q already exists", models.ErrValidation, supplier.Name)
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, supplier)
	}

	if err := s.local.SaveSuppliers(next); err != nil {
		return models.Supplier{}, fmt.Errorf("save supplier %s: %w", supplier.ID, err)
	}
	s.suppliers = next
	return supplier, nil
}

// CheckConfiguration reports whether the backend is configured and reachable.
func (s *Service) CheckConfiguration(ctx context.Context) gateway.ConfigStatus {
	return s.backend.CheckConfiguration(ctx)
}

func (s *Service) resolve(ref string) (models.Product, error) {
	ref = strings.TrimSpace(ref)
	if p, err := s.catalog.GetByBarcode(ref); err == nil {
		return p, nil
	}
	p, err := s.catalog.GetByID(ref)
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: no product with barcode or id %q", models.ErrNotFound, ref)
	}
	return p, nil
}

// reconcile settles local changes against the outcome of a backend write.
// Local changes are never rolled back; with a remote backend they stay marked
// unsynced until a later write or Refresh confirms them.
func (s *Service) reconcile(err error, ids ...string) {
	if err == nil {
		s.catalog.ClearUnsynced(ids...)
	} else if s.backend.Kind() != gateway.KindLocal {
		s.catalog.MarkUnsynced(ids...)
	}
	s.saveCache()
}

// saveCache keeps the on-device copy of a remote catalog current. The local
// backend already writes the same store.
func (s *Service) saveCache() {
	if s.backend.Kind() == gateway.KindLocal {
		return
	}
	if err := s.local.SaveProducts(s.catalog.All()); err != nil {
		s.logger.Warn("catalog cache not saved", zap.Error(err))
	}
}

// mirrorLedger keeps a local copy of ledger entries recorded by a remote
// backend so reports work whatever the system of record.
func (s *Service) mirrorLedger(entries []models.LedgerEntry) {
	if s.backend.Kind() == gateway.KindLocal || len(entries) == 0 {
		return
	}
	if err := s.local.AppendLedger(entries); err != nil {
		s.logger.Warn("ledger not mirrored locally", zap.Error(err))
	}
}

func (s *Service) observeCatalog() {
	if s.metrics != nil {
		s.metrics.CatalogSize.Set(float64(s.catalog.Len()))
	}
}

func (s *Service) countSubmit(kind, result string) {
	if s.metrics != nil {
		s.metrics.Submits.WithLabelValues(kind, result).Inc()
	}
}

func outcome(r SubmitResult) string {
	if len(r.Warnings) > 0 {
		return "partial"
	}
	return "ok"
}

// sameCounts reports whether two stocktakes hold the same counts.
func sameCounts(a, b []models.StocktakeItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ProductID != b[i].ProductID || a[i].ExpectedQuantity != b[i].ExpectedQuantity || a[i].ActualQuantity != b[i].ActualQuantity {
			return false
		}
	}
	return true
}

// truncateStamp drops the precision backends cannot store so a product reads
// back equal to what was written.
func truncateStamp(p models.Product) models.Product {
	if p.LastOrdered != nil {
		at := p.LastOrdered.UTC().Truncate(gateway.StampPrecision)
		p.LastOrdered = &at
	}
	return p
}

func productIDs(products []models.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func orderProductIDs(items []models.OrderItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func stocktakeProductIDs(items []models.StocktakeItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
