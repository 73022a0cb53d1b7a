// Package catalogcsv reads and writes the product catalog as CSV.
package catalogcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

type field int

const (
	fieldID field = iota
	fieldBarcode
	fieldSKU
	fieldName
	fieldDescription
	fieldCategory
	fieldSupplier
	fieldUnit
	fieldPrice
	fieldCost
	fieldCurrentStock
	fieldMinStock
	fieldImageURL
	fieldLastOrdered
	fieldCount
)

// Header is the canonical column order written by Write.
var Header = []string{
	"id", "barcode", "sku", "name", "description", "category", "supplier",
	"unit", "price", "cost", "current_stock", "min_stock", "image_url", "last_ordered",
}

// aliases maps normalized header names to fields.
var aliases = map[string]field{
	"id": fieldID, "product id": fieldID,

	"barcode": fieldBarcode, "ean": fieldBarcode, "upc": fieldBarcode, "gtin": fieldBarcode, "bar code": fieldBarcode,

	"sku": fieldSKU, "item code": fieldSKU, "reference": fieldSKU, "ref": fieldSKU,

	"name": fieldName, "product": fieldName, "product name": fieldName,
	"item": fieldName, "item name": fieldName, "title": fieldName,

	"description": fieldDescription, "desc": fieldDescription, "details": fieldDescription,

	"category": fieldCategory, "type": fieldCategory, "group": fieldCategory,

	"supplier": fieldSupplier, "vendor": fieldSupplier, "supplier name": fieldSupplier,

	"unit": fieldUnit, "uom": fieldUnit, "unit of measure": fieldUnit,

	"price": fieldPrice, "sale price": fieldPrice, "selling price": fieldPrice, "retail price": fieldPrice,

	"cost": fieldCost, "cost price": fieldCost, "purchase price": fieldCost, "unit cost": fieldCost,

	"current stock": fieldCurrentStock, "stock": fieldCurrentStock, "quantity": fieldCurrentStock,
	"qty": fieldCurrentStock, "on hand": fieldCurrentStock,

	"min stock": fieldMinStock, "minimum stock": fieldMinStock, "reorder level": fieldMinStock,
	"reorder point": fieldMinStock, "min": fieldMinStock,

	"image url": fieldImageURL, "image": fieldImageURL, "photo": fieldImageURL,

	"last ordered": fieldLastOrdered,
}

var productNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mamadbah2/stockroom/products"))

// Result is the outcome of Parse. Warnings name the rows that were skipped.
type Result struct {
	Products []models.Product
	Warnings []string
}

// Parse reads products from CSV with a header row. Only a name column is
// required; rows without a name are skipped. Missing ids, SKUs and barcodes are
// derived from the name and supplier so re-importing the same file is stable.
func Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("%w: csv is empty", models.ErrValidation)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: read csv header: %v", models.ErrValidation, err)
	}

	columns := mapColumns(header)
	if _, ok := columns[fieldName]; !ok {
		return Result{}, fmt.Errorf("%w: csv has no name column", models.ErrValidation)
	}

	var result Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v", models.ErrMalformedData, err))
			continue
		}
		line, _ := reader.FieldPos(0)

		cell := func(f field) string {
			idx, ok := columns[f]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		p := models.Product{
			ID:           cell(fieldID),
			Barcode:      cell(fieldBarcode),
			SKU:          cell(fieldSKU),
			Name:         cell(fieldName),
			Description:  cell(fieldDescription),
			Category:     cell(fieldCategory),
			Supplier:     cell(fieldSupplier),
			Unit:         cell(fieldUnit),
			Price:        parseAmount(cell(fieldPrice)),
			Cost:         parseAmount(cell(fieldCost)),
			CurrentStock: parseCount(cell(fieldCurrentStock)),
			MinStock:     parseCount(cell(fieldMinStock)),
			ImageURL:     cell(fieldImageURL),
		}
		if p.Name == "" {
			if !blankRecord(record) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %v: row has no name", line, models.ErrMalformedData))
			}
			continue
		}
		if raw := cell(fieldLastOrdered); raw != "" {
			if at, err := time.Parse(time.RFC3339, raw); err == nil {
				p.LastOrdered = &at
			}
		}
		fillIdentifiers(&p)
		result.Products = append(result.Products, p)
	}
	return result, nil
}

// Write emits the canonical header followed by one row per product.
func Write(w io.Writer, products []models.Product) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		lastOrdered := ""
		if p.LastOrdered != nil {
			lastOrdered = p.LastOrdered.UTC().Format(time.RFC3339)
		}
		record := []string{
			p.ID, p.Barcode, p.SKU, p.Name, p.Description, p.Category, p.Supplier, p.Unit,
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			strconv.FormatFloat(p.Cost, 'f', -1, 64),
			strconv.Itoa(p.CurrentStock),
			strconv.Itoa(p.MinStock),
			p.ImageURL,
			lastOrdered,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func mapColumns(header []string) map[field]int {
	columns := make(map[field]int, fieldCount)
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		f, ok := aliases[normalizeHeader(name)]
		if !ok {
			continue
		}
		if _, seen := columns[f]; !seen {
			columns[f] = i
		}
	}
	return columns
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

func parseAmount(s string) float64 {
	s = strings.TrimLeft(s, "$€£ ")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseCount(s string) int {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 || v > math.MaxInt32 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func fillIdentifiers(p *models.Product) {
	key := p.Name + "|" + p.Supplier
	if p.ID == "" {
		p.ID = uuid.NewSHA1(productNamespace, []byte(key)).String()
	}
	if p.SKU == "" {
		p.SKU = SKU(p.Name, p.Supplier)
	}
	if p.Barcode == "" {
		p.Barcode = Barcode(key)
	}
}

// SKU builds an uppercase slug of name followed by a short hash of name and supplier.
func SKU(name, supplier string) string {
	var slug strings.Builder
	for _, r := range strings.ToUpper(name) {
		if slug.Len() >= 8 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			slug.WriteRune(r)
		}
	}
	if slug.Len() == 0 {
		slug.WriteString("ITEM")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name + "|" + supplier))
	return fmt.Sprintf("%s-%04X", slug.String(), h.Sum32()&0xFFFF)
}

// Barcode derives a stable EAN-13 from key: twelve digits of an FNV hash plus
// the check digit.
func Barcode(key string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	digits := fmt.Sprintf("%012d", h.Sum64()%1_000_000_000_000)
	return digits + strconv.Itoa(ean13CheckDigit(digits))
}

func ean13CheckDigit(twelve string) int {
	sum := 0
	for i, r := range twelve {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}
