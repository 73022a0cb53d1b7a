package models

import "encoding/json"

// StocktakeItem records one physical count against the expected system stock.
type StocktakeItem struct {
	ProductID        string `json:"product_id"`
	Barcode          string `json:"barcode"`
	Name             string `json:"name"`
	ExpectedQuantity int    `json:"expected_quantity"`
	ActualQuantity   int    `json:"actual_quantity"`
}

// Discrepancy is the counted quantity minus the expected quantity.
func (s StocktakeItem) Discrepancy() int {
	return s.ActualQuantity - s.ExpectedQuantity
}

// MarshalJSON includes the derived discrepancy so clients do not recompute it.
func (s StocktakeItem) MarshalJSON() ([]byte, error) {
	type plain StocktakeItem
	return json.Marshal(struct {
		plain
		Discrepancy int `json:"discrepancy"`
	}{plain: plain(s), Discrepancy: s.Discrepancy()})
}
