package models

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog entry. Barcode is the lookup key used by every scan-driven flow.
type Product struct {
	ID           string     `json:"id" bson:"product_id"`
	Barcode      string     `json:"barcode" bson:"barcode"`
	SKU          string     `json:"sku" bson:"sku"`
	Name         string     `json:"name" bson:"name"`
	Description  string     `json:"description" bson:"description"`
	Category     string     `json:"category" bson:"category"`
	Supplier     string     `json:"supplier" bson:"supplier"`
	Unit         string     `json:"unit" bson:"unit"`
	Price        float64    `json:"price" bson:"price"`
	Cost         float64    `json:"cost" bson:"cost"`
	CurrentStock int        `json:"current_stock" bson:"current_stock"`
	MinStock     int        `json:"min_stock" bson:"min_stock"`
	ImageURL     string     `json:"image_url,omitempty" bson:"image_url,omitempty"`
	LastOrdered  *time.Time `json:"last_ordered,omitempty" bson:"last_ordered,omitempty"`
}

// IsLowStock reports whether the product sits at or below its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}

// Validate checks the fields every backend relies on.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product name must be provided", ErrValidation)
	case strings.TrimSpace(p.Barcode) == "":
		return fmt.Errorf("%w: product %q has no barcode", ErrValidation, p.Name)
	case p.CurrentStock < 0:
		return fmt.Errorf("%w: product %q has negative current stock", ErrValidation, p.Name)
	case p.MinStock < 0:
		return fmt.Errorf("%w: product %q has negative minimum stock", ErrValidation, p.Name)
	}
	return nil
}

// Equal compares two products field by field, treating LastOrdered by instant.
func (p Product) Equal(o Product) bool {
	if p.LastOrdered == nil || o.LastOrdered == nil {
		if p.LastOrdered != o.LastOrdered {
			return false
		}
	} else if !p.LastOrdered.Equal(*o.LastOrdered) {
		return false
	}
	a, b := p, o
	a.LastOrdered, b.LastOrdered = nil, nil
	return a == b
}
