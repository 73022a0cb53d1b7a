package inventory

import (
	"testing"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

var (
	productP = models.Product{ID: "p", Barcode: "100", Name: "Pins", Supplier: "Acme", CurrentStock: 10, MinStock: 2}
	productQ = models.Product{ID: "q", Barcode: "200", Name: "Bolts", Supplier: "Bolt Co", CurrentStock: 4, MinStock: 1}
)

func TestOrder_AddMergesQuantities(t *testing.T) {
	o := NewOrder()
	quantities := []int{3, 2, 7, 1}
	for _, q := range quantities {
		o.AddItem(productP, q)
	}

	items := o.Items()
	if len(items) != 1 {
		t.Fatalf("want one line, got %d", len(items))
	}
	if items[0].Quantity != 13 {
		t.Fatalf("quantity=%d want 13", items[0].Quantity)
	}
	if items[0].Supplier != "Acme" || items[0].Barcode != "100" {
		t.Fatalf("line not built from product: %+v", items[0])
	}
}

func TestOrder_IgnoresQuantitiesBelowOne(t *testing.T) {
	o := NewOrder()
	o.AddItem(productP, 0)
	if o.Len() != 0 {
		t.Fatalf("zero quantity should not create a line")
	}

	o.AddItem(productP, 2)
	o.UpdateQuantity("p", 0)
	o.UpdateQuantity("p", -4)
	if got := o.Items()[0].Quantity; got != 2 {
		t.Fatalf("quantity=%d want 2", got)
	}
}

func TestOrder_UpdateRemoveClear(t *testing.T) {
	o := NewOrder()
	o.AddItem(productP, 1)
	o.AddItem(productQ, 1)

	o.UpdateQuantity("q", 9)
	o.UpdateQuantity("missing", 9)
	if got := o.Items()[1].Quantity; got != 9 {
		t.Fatalf("quantity=%d want 9", got)
	}

	o.RemoveItem("p")
	o.RemoveItem("p")
	items := o.Items()
	if len(items) != 1 || items[0].ProductID != "q" {
		t.Fatalf("unexpected items after remove: %+v", items)
	}

	// index must follow the shifted line
	o.AddItem(productQ, 1)
	if got := o.Items()[0].Quantity; got != 10 {
		t.Fatalf("quantity=%d want 10", got)
	}

	o.Clear()
	if o.Len() != 0 {
		t.Fatalf("clear left %d lines", o.Len())
	}
}
