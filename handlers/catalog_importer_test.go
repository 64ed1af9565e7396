package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"odeplac.in/pro/models"
)

func TestBuildMaterialRows(t *testing.T) {
	supplierID := uuid.New()
	tariffID := uuid.New()

	items := []ExtractedItem{
		{Name: "Cemento gris", Price: 185, Unit: "saco", Reference: "CEM-01"},
		{Name: "  ", Price: 10, Unit: "pieza"},           // skipped: blank name
		{Name: "Panel", Price: 12.5, Unit: "laminas"},    // unknown unit -> pieza
		{Name: "Grava", Price: -5, Unit: "kg"},           // negative cost -> 0
	}

	rows := BuildMaterialRows(items, "cimentación", &supplierID, 30, tariffID)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Name != "Cemento gris" || first.Unit != models.UnitSaco {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.CostPrice != 185 || first.SalePrice != 240.5 {
		t.Errorf("prices wrong: cost=%v sale=%v", first.CostPrice, first.SalePrice)
	}
	if first.Category != "cimentación" || first.SupplierID == nil || *first.SupplierID != supplierID {
		t.Errorf("category/supplier wrong: %+v", first)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(first.Metadata, &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta["markup_pct"] != float64(30) || meta["reference"] != "CEM-01" {
		t.Errorf("metadata wrong: %v", meta)
	}
	if meta["tariff_id"] != tariffID.String() {
		t.Errorf("tariff id missing from metadata: %v", meta)
	}

	if rows[1].Unit != models.UnitPieza {
		t.Errorf("unknown unit must fall back to pieza, got %s", rows[1].Unit)
	}
	if rows[2].CostPrice != 0 || rows[2].SalePrice != 0 {
		t.Errorf("negative cost must import as 0: %+v", rows[2])
	}
}

// The importer's idempotence hangs on this clause targeting the natural
// key and updating rather than inserting. Pin it down so a change to the
// conflict columns or the assignment set fails loudly.
func TestCatalogUpsertClause(t *testing.T) {
	c := catalogUpsertClause()

	wantCols := []string{"name", "supplier_id"}
	if len(c.Columns) != len(wantCols) {
		t.Fatalf("expected %d conflict columns, got %d", len(wantCols), len(c.Columns))
	}
	for i, col := range c.Columns {
		if col.Name != wantCols[i] {
			t.Errorf("conflict column %d = %q, want %q", i, col.Name, wantCols[i])
		}
	}

	if c.DoNothing {
		t.Fatal("conflicts must update the existing row, not be ignored")
	}
	updated := map[string]bool{}
	for _, a := range c.DoUpdates {
		updated[a.Column.Name] = true
	}
	for _, want := range []string{"cost_price", "sale_price", "category", "metadata", "unit", "updated_at"} {
		if !updated[want] {
			t.Errorf("conflict update must overwrite %q", want)
		}
	}
	if updated["id"] || updated["created_at"] {
		t.Error("conflict update must not touch identity columns")
	}
}
