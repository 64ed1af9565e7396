package handlers

import (
	"math"

	"github.com/google/uuid"
	"odeplac.in/pro/models"
)

// ComparisonRow pairs an extracted cost with the suggested sale price for
// the preview/confirmation screen, plus the current catalog price when the
// item already exists for that supplier.
type ComparisonRow struct {
	Name           string     `json:"name"`
	Unit           string     `json:"unit"`
	Reference      string     `json:"reference,omitempty"`
	Cost           float64    `json:"cost"`
	SuggestedPrice float64    `json:"suggested_price"`
	ExistingID     *uuid.UUID `json:"existing_id,omitempty"`
	ExistingPrice  *float64   `json:"existing_price,omitempty"`
}

// SuggestedPrice applies the markup: cost * (1 + markup/100). Missing,
// negative or non-finite cost counts as 0 for display; nothing is rejected
// at preview time.
func SuggestedPrice(cost, markupPct float64) float64 {
	if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		cost = 0
	}
	if markupPct < 0 || math.IsNaN(markupPct) || math.IsInf(markupPct, 0) {
		markupPct = 0
	}
	return cost * (1 + markupPct/100)
}

// BuildComparison is a pure transformation: no side effects, safe to call
// repeatedly while the operator tweaks the markup. existing maps the
// catalog by name for the tariff's supplier.
func BuildComparison(items []ExtractedItem, markupPct float64, existing map[string]models.Material) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(items))
	for _, it := range items {
		cost := it.Price
		if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
			cost = 0
		}
		row := ComparisonRow{
			Name:           it.Name,
			Unit:           it.Unit,
			Reference:      it.Reference,
			Cost:           cost,
			SuggestedPrice: SuggestedPrice(cost, markupPct),
		}
		if m, ok := existing[it.Name]; ok {
			id := m.ID
			price := m.CostPrice
			row.ExistingID = &id
			row.ExistingPrice = &price
		}
		rows = append(rows, row)
	}
	return rows
}
