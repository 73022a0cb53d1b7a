package gateway

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// productColumns is the header written to row 1 of the products sheet.
var productColumns = []interface{}{
	"id", "barcode", "sku", "name", "description", "category", "supplier",
	"unit", "price", "cost", "current_stock", "min_stock", "image_url", "last_ordered",
}

func encodeProductRow(p models.Product) []interface{} {
	lastOrdered := ""
	if p.LastOrdered != nil {
		lastOrdered = p.LastOrdered.UTC().Format(time.RFC3339Nano)
	}
	return []interface{}{
		p.ID, p.Barcode, p.SKU, p.Name, p.Description, p.Category, p.Supplier,
		p.Unit, p.Price, p.Cost, p.CurrentStock, p.MinStock, p.ImageURL, lastOrdered,
	}
}

func decodeProductRow(row []interface{}) (models.Product, error) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return cellString(row[i])
	}

	p := models.Product{
		ID:          cell(0),
		Barcode:     cell(1),
		SKU:         cell(2),
		Name:        cell(3),
		Description: cell(4),
		Category:    cell(5),
		Supplier:    cell(6),
		Unit:        cell(7),
		ImageURL:    cell(12),
	}
	if p.ID == "" || p.Name == "" {
		return models.Product{}, fmt.Errorf("%w: row without id or name", models.ErrMalformedData)
	}

	var err error
	if p.Price, err = parseFloatCell(cell(8)); err != nil {
		return models.Product{}, fmt.Errorf("%w: product %s price: %v", models.ErrMalformedData, p.ID, err)
	}
	if p.Cost, err = parseFloatCell(cell(9)); err != nil {
		return models.Product{}, fmt.Errorf("%w: product %s cost: %v", models.ErrMalformedData, p.ID, err)
	}
	if p.CurrentStock, err = parseStockCell(cell(10)); err != nil {
		return models.Product{}, fmt.Errorf("%w: product %s current stock: %v", models.ErrMalformedData, p.ID, err)
	}
	if p.MinStock, err = parseStockCell(cell(11)); err != nil {
		return models.Product{}, fmt.Errorf("%w: product %s min stock: %v", models.ErrMalformedData, p.ID, err)
	}
	if raw := cell(13); raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return models.Product{}, fmt.Errorf("%w: product %s last ordered: %v", models.ErrMalformedData, p.ID, err)
		}
		p.LastOrdered = &at
	}
	return p, nil
}

func encodeLedgerRow(e models.LedgerEntry) []interface{} {
	ts := e.Timestamp.UTC().Format(time.RFC3339)
	if e.Kind == models.LedgerStocktake {
		return []interface{}{ts, e.ReferenceID, e.ProductID, e.Barcode, e.Name, e.Expected, e.Actual, e.Discrepancy}
	}
	return []interface{}{ts, e.ReferenceID, e.ProductID, e.Barcode, e.Name, e.Supplier, e.Quantity}
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func parseFloatCell(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseStockCell(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a non-negative integer", s)
	}
	return int(f), nil
}
