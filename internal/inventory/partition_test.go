package inventory

import (
	"fmt"
	"testing"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("po-%d", n)
	}
}

func TestPartition_OneOrderPerSupplier(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "a", Quantity: 1, Supplier: "Bolt Co"},
		{ProductID: "b", Quantity: 2, Supplier: "Acme"},
		{ProductID: "c", Quantity: 3, Supplier: "Bolt Co"},
		{ProductID: "d", Quantity: 4, Supplier: "acme"},
		{ProductID: "e", Quantity: 5, Supplier: ""},
	}
	suppliers := []models.Supplier{{ID: "s-acme", Name: "Acme"}, {ID: "s-bolt", Name: "Bolt Co"}}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	orders := Partition(items, suppliers, now, sequentialIDs())

	if len(orders) != 4 {
		t.Fatalf("want 4 orders (case-sensitive suppliers), got %d", len(orders))
	}

	wantNames := []string{"Bolt Co", "Acme", "acme", ""}
	wantIDs := []string{"s-bolt", "s-acme", models.UnknownSupplierID, models.UnknownSupplierID}
	for i, po := range orders {
		if po.SupplierName != wantNames[i] || po.SupplierID != wantIDs[i] {
			t.Fatalf("order %d: got %s/%s want %s/%s", i, po.SupplierName, po.SupplierID, wantNames[i], wantIDs[i])
		}
		if po.Status != models.OrderDraft || !po.Date.Equal(now) || po.ID != fmt.Sprintf("po-%d", i+1) {
			t.Fatalf("order %d header: %+v", i, po)
		}
	}

	seen := make(map[string]int)
	total := 0
	for _, po := range orders {
		for _, item := range po.Items {
			if item.Supplier != po.SupplierName {
				t.Fatalf("item %s filed under %q", item.ProductID, po.SupplierName)
			}
			seen[item.ProductID]++
			total++
		}
	}
	if total != len(items) {
		t.Fatalf("items lost or duplicated: %d vs %d", total, len(items))
	}
	for _, item := range items {
		if seen[item.ProductID] != 1 {
			t.Fatalf("item %s appears %d times", item.ProductID, seen[item.ProductID])
		}
	}
}

func TestPartition_EmptyInput(t *testing.T) {
	if orders := Partition(nil, nil, time.Now(), nil); len(orders) != 0 {
		t.Fatalf("want no orders, got %d", len(orders))
	}
}

func TestPartition_DefaultIDsAreUnique(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "a", Quantity: 1, Supplier: "A"},
		{ProductID: "b", Quantity: 1, Supplier: "B"},
		{ProductID: "c", Quantity: 1, Supplier: "C"},
	}
	orders := Partition(items, nil, time.Now(), nil)
	ids := make(map[string]struct{})
	for _, po := range orders {
		if po.ID == "" {
			t.Fatalf("empty id")
		}
		ids[po.ID] = struct{}{}
	}
	if len(ids) != 3 {
		t.Fatalf("ids collided: %v", ids)
	}
}
