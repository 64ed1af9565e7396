package handlers

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"odeplac.in/pro/models"
)

func TestSuggestedPrice(t *testing.T) {
	tests := []struct {
		name   string
		cost   float64
		markup float64
		want   float64
	}{
		{"thirty percent markup", 100.00, 30, 130.00},
		{"zero markup", 50, 0, 50},
		{"zero cost", 0, 30, 0},
		{"fractional markup", 200, 12.5, 225},
		{"negative cost treated as zero", -10, 30, 0},
		{"NaN cost treated as zero", math.NaN(), 30, 0},
		{"negative markup treated as zero", 100, -20, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SuggestedPrice(tc.cost, tc.markup)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("SuggestedPrice(%v, %v) = %v, want %v", tc.cost, tc.markup, got, tc.want)
			}
		})
	}
}

func TestBuildComparison(t *testing.T) {
	existingID := uuid.New()
	existing := map[string]models.Material{
		"Cemento gris": {ID: existingID, CostPrice: 170},
	}
	items := []ExtractedItem{
		{Name: "Cemento gris", Price: 185, Unit: "saco"},
		{Name: "Panel nuevo", Price: 12.5, Unit: "m2", Reference: "PN-9"},
		{Name: "Sin precio", Price: -1, Unit: "pieza"},
	}

	rows := BuildComparison(items, 30, existing)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[0].ExistingID == nil || *rows[0].ExistingID != existingID {
		t.Error("existing catalog row not joined")
	}
	if rows[0].ExistingPrice == nil || *rows[0].ExistingPrice != 170 {
		t.Error("existing price not carried into the row")
	}
	if got := rows[0].SuggestedPrice; math.Abs(got-240.5) > 1e-9 {
		t.Errorf("suggested price = %v, want 240.5", got)
	}

	if rows[1].ExistingID != nil {
		t.Error("new item must not join an existing row")
	}
	if rows[1].Reference != "PN-9" {
		t.Error("reference dropped")
	}

	if rows[2].Cost != 0 || rows[2].SuggestedPrice != 0 {
		t.Errorf("negative cost must display as 0, got %+v", rows[2])
	}
}
