package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/metrics"
	repo "github.com/mamadbah2/stockroom/internal/repository/sheets"
)

const (
	productsSheetRange   = "Products!A1:N"
	productsDataRange    = "Products!A2:N"
	productsIDRange      = "Products!A2:A"
	productsAppendRange  = "Products!A:N"
	reorderLedgerRange   = "Reorders!A:G"
	stocktakeLedgerRange = "Stocktakes!A:H"
)

// SheetsBackend maps the catalog and ledgers onto a Google spreadsheet.
type SheetsBackend struct {
	repo    repo.Repository
	avail   availability
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewSheetsBackend builds the spreadsheet backend. A nil repository or a non-empty
// missing list leaves the backend unavailable.
func NewSheetsBackend(repository repo.Repository, missing []string, initErr error, reg *metrics.Registry, logger *zap.Logger) *SheetsBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repository == nil && len(missing) == 0 && initErr == nil {
		initErr = fmt.Errorf("sheets repository not initialized")
	}
	return &SheetsBackend{
		repo:    repository,
		avail:   availability{missing: missing, initErr: initErr},
		metrics: reg,
		logger:  logger,
	}
}

func (b *SheetsBackend) Kind() Kind   { return KindSheets }
func (b *SheetsBackend) Name() string { return "sheets" }

func (b *SheetsBackend) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if err := b.avail.check(b.Name()); err != nil {
		return nil, err
	}

	rows, err := b.repo.ReadRange(ctx, productsDataRange)
	if err != nil {
		return nil, unavailable("read products", err)
	}

	products := make([]models.Product, 0, len(rows))
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		p, err := decodeProductRow(row)
		if err != nil {
			b.logger.Warn("skip product row", zap.Int("row", i+2), zap.Error(err))
			countMalformed(b.metrics, b.Name())
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// PersistProducts clears the data rows and rewrites the sheet. The two calls are
// not transactional: a failed rewrite after a successful clear returns
// models.ErrNonAtomicWrite and the sheet may be left empty.
func (b *SheetsBackend) PersistProducts(ctx context.Context, products []models.Product) error {
	if err := b.avail.check(b.Name()); err != nil {
		return err
	}

	if err := b.repo.ClearRange(ctx, productsDataRange); err != nil {
		return unavailable("clear products", err)
	}

	rows := make([][]interface{}, 0, len(products)+1)
	rows = append(rows, productColumns)
	for _, p := range products {
		rows = append(rows, encodeProductRow(p))
	}
	if err := b.repo.UpdateRange(ctx, productsSheetRange, rows); err != nil {
		b.logger.Error("products sheet cleared but rewrite failed", zap.Int("products", len(products)), zap.Error(err))
		return fmt.Errorf("%w: rewrite products: %w", models.ErrNonAtomicWrite, err)
	}
	return nil
}

func (b *SheetsBackend) PersistSingleProduct(ctx context.Context, product models.Product) error {
	if err := b.avail.check(b.Name()); err != nil {
		return err
	}

	ids, err := b.repo.ReadRange(ctx, productsIDRange)
	if err != nil {
		return unavailable("read product ids", err)
	}

	row := encodeProductRow(product)
	for i, idRow := range ids {
		if len(idRow) == 0 || cellString(idRow[0]) != product.ID {
			continue
		}
		sheetRow := i + 2
		target := fmt.Sprintf("Products!A%d:N%d", sheetRow, sheetRow)
		if err := b.repo.UpdateRange(ctx, target, [][]interface{}{row}); err != nil {
			return unavailable("update product "+product.ID, err)
		}
		return nil
	}

	if len(ids) == 0 {
		// an empty sheet gets its header first so the data starts on row 2
		if err := b.repo.UpdateRange(ctx, productsSheetRange, [][]interface{}{productColumns, row}); err != nil {
			return unavailable("write first product", err)
		}
		return nil
	}
	if err := b.repo.AppendRows(ctx, productsAppendRange, [][]interface{}{row}); err != nil {
		return unavailable("append product "+product.ID, err)
	}
	return nil
}

func (b *SheetsBackend) AppendLedger(ctx context.Context, entries []models.LedgerEntry) error {
	if err := b.avail.check(b.Name()); err != nil {
		return err
	}

	var orders, counts [][]interface{}
	for _, e := range entries {
		if e.Kind == models.LedgerStocktake {
			counts = append(counts, encodeLedgerRow(e))
		} else {
			orders = append(orders, encodeLedgerRow(e))
		}
	}
	if err := b.repo.AppendRows(ctx, reorderLedgerRange, orders); err != nil {
		return unavailable("append reorder ledger", err)
	}
	if err := b.repo.AppendRows(ctx, stocktakeLedgerRange, counts); err != nil {
		return unavailable("append stocktake ledger", err)
	}
	return nil
}

func (b *SheetsBackend) CheckConfiguration(ctx context.Context) ConfigStatus {
	status := b.avail.status(b.Name(), KindSheets)
	if !status.OK {
		return status
	}
	if err := b.repo.Ping(ctx); err != nil {
		status.OK = false
		status.Detail = err.Error()
	}
	return status
}

func isBlankRow(row []interface{}) bool {
	for _, v := range row {
		if cellString(v) != "" {
			return false
		}
	}
	return true
}
