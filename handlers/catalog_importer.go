package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

// ErrImport wraps catalog persistence failures.
var ErrImport = errors.New("catalog import failed")

// materialContextCacheKey is the redis key holding the chat assistant's
// catalog snapshot. Invalidated whenever an import lands so freshly
// imported rows are immediately visible to the assistant.
const materialContextCacheKey = "odeplac:chat:material-context"

// CatalogImporter persists confirmed tariff items into the catalog.
//
// Upsert policy: (name, supplier_id) is the natural key. Re-importing an
// updated tariff overwrites cost, sale price, category and markup metadata
// on the existing row instead of inserting a duplicate. This is the single
// canonical path; there is no plain-insert variant. The backing index is
// NULLS NOT DISTINCT, so the conflict also fires for supplier-less rows.
type CatalogImporter struct {
	db *gorm.DB
}

// catalogUpsertClause is the importer's conflict policy: update prices and
// classification on the natural key, never insert a second row.
func catalogUpsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}, {Name: "supplier_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cost_price", "sale_price", "category", "metadata", "unit", "updated_at",
		}),
	}
}

func NewCatalogImporter() *CatalogImporter {
	return &CatalogImporter{db: config.DB}
}

// BuildMaterialRows maps confirmed items to catalog rows. Items without a
// name are skipped; unknown units fall back to pieza.
func BuildMaterialRows(items []ExtractedItem, category string, supplierID *uuid.UUID, markupPct float64, tariffID uuid.UUID) []models.Material {
	rows := make([]models.Material, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		cost := it.Price
		if cost < 0 {
			cost = 0
		}
		unit := it.Unit
		if !models.ValidUnit(unit) {
			unit = models.UnitPieza
		}

		meta, _ := json.Marshal(map[string]interface{}{
			"markup_pct": markupPct,
			"tariff_id":  tariffID.String(),
			"reference":  it.Reference,
		})

		rows = append(rows, models.Material{
			Name:       name,
			Unit:       unit,
			CostPrice:  cost,
			SalePrice:  SuggestedPrice(cost, markupPct),
			Category:   category,
			SupplierID: supplierID,
			Metadata:   datatypes.JSON(meta),
		})
	}
	return rows
}

// Import writes the rows inside one transaction: the operation is
// all-or-nothing, a partial bulk failure rolls everything back.
func (ci *CatalogImporter) Import(ctx context.Context, items []ExtractedItem, category string, supplierID *uuid.UUID, markupPct float64, tariffID uuid.UUID) (int, error) {
	rows := BuildMaterialRows(items, category, supplierID, markupPct, tariffID)
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no importable items", ErrImport)
	}

	err := ci.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(catalogUpsertClause()).Create(&rows)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrImport, result.Error)
		}

		if err := tx.Model(&models.TariffDocument{}).
			Where("id = ?", tariffID).
			Updates(map[string]interface{}{
				"status":     models.TariffStatusImported,
				"item_count": len(rows),
			}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrImport, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	invalidateMaterialContext(ctx)
	log.Infof("imported %d catalog rows from tariff %s", len(rows), tariffID)
	return len(rows), nil
}

func invalidateMaterialContext(ctx context.Context) {
	if config.Redis == nil {
		return
	}
	if err := config.Redis.Del(ctx, materialContextCacheKey).Err(); err != nil {
		log.WithError(err).Warn("failed to invalidate material context cache")
	}
}
