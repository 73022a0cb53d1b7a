package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: "p1", Barcode: "111", Name: "Flour", CurrentStock: 10, MinStock: 2},
		{ID: "p2", Barcode: "222", Name: "Sugar", CurrentStock: 1, MinStock: 3},
	}
}

func TestStore_LookupByBarcodeAndID(t *testing.T) {
	s := NewStore(sampleProducts())

	p, err := s.GetByBarcode("222")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.ID != "p2" {
		t.Fatalf("want p2, got %s", p.ID)
	}

	if _, err := s.GetByBarcode("999"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.GetByID("nope"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStore_UpsertReindexesBarcode(t *testing.T) {
	s := NewStore(sampleProducts())
	s.Upsert(models.Product{ID: "p1", Barcode: "333", Name: "Flour"})

	if _, err := s.GetByBarcode("111"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("old barcode should be gone, got %v", err)
	}
	if p, err := s.GetByBarcode("333"); err != nil || p.ID != "p1" {
		t.Fatalf("new barcode lookup: %+v %v", p, err)
	}

	s.Upsert(models.Product{ID: "p3", Barcode: "444", Name: "Salt"})
	if s.Len() != 3 {
		t.Fatalf("len=%d want 3", s.Len())
	}
}

func TestStore_StockMutations(t *testing.T) {
	s := NewStore(sampleProducts())

	p, err := s.ApplyStockDelta("p1", 5)
	if err != nil || p.CurrentStock != 15 {
		t.Fatalf("delta: %+v %v", p, err)
	}
	p, _ = s.ApplyStockDelta("p1", -100)
	if p.CurrentStock != 0 {
		t.Fatalf("stock should clamp at zero, got %d", p.CurrentStock)
	}

	if _, err := s.OverwriteStock("p1", -1); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	p, err = s.OverwriteStock("p1", 7)
	if err != nil || p.CurrentStock != 7 {
		t.Fatalf("overwrite: %+v %v", p, err)
	}
	if _, err := s.OverwriteStock("missing", 1); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore(sampleProducts())
	all := s.All()
	all[0].Name = "changed"

	p, _ := s.GetByID("p1")
	if p.Name != "Flour" {
		t.Fatalf("store mutated through returned slice")
	}
}

func TestStore_MarkOrderedAndUnsynced(t *testing.T) {
	s := NewStore(sampleProducts())
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	updated := s.MarkOrdered([]string{"p1", "ghost"}, at)
	if len(updated) != 1 || updated[0].LastOrdered == nil || !updated[0].LastOrdered.Equal(at) {
		t.Fatalf("unexpected updated: %+v", updated)
	}

	s.MarkUnsynced("p1", "ghost")
	if got := s.Unsynced(); len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("unexpected unsynced: %+v", got)
	}

	s.Replace([]models.Product{{ID: "p2", Barcode: "222", Name: "Sugar"}})
	if len(s.Unsynced()) != 0 {
		t.Fatalf("unsynced mark should drop with the product")
	}

	s.MarkUnsynced("p2")
	s.ClearUnsynced("p2")
	if s.IsUnsynced("p2") {
		t.Fatalf("p2 should be synced")
	}
}

func TestStore_LowStock(t *testing.T) {
	s := NewStore(sampleProducts())
	low := s.LowStock()
	if len(low) != 1 || low[0].ID != "p2" {
		t.Fatalf("unexpected low stock: %+v", low)
	}
}
