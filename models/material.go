package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Units of measure accepted for catalog materials.
const (
	UnitPieza = "pieza"
	UnitM2    = "m2"
	UnitML    = "ml"
	UnitKg    = "kg"
	UnitSaco  = "saco"
)

// ValidUnit reports whether u is one of the accepted units of measure.
func ValidUnit(u string) bool {
	switch u {
	case UnitPieza, UnitM2, UnitML, UnitKg, UnitSaco:
		return true
	}
	return false
}

// Material is a catalog row. (Name, SupplierID) is the natural key used by
// the tariff importer: re-importing an updated price list updates the row
// instead of inserting a duplicate. The backing unique index is created in
// the migrations with NULLS NOT DISTINCT so supplier-less rows dedupe too;
// a plain two-column unique index would treat every NULL supplier as
// distinct and ON CONFLICT would never fire for them.
type Material struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Unit       string     `gorm:"size:10;not null;default:'pieza'" json:"unit"`
	CostPrice  float64    `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	SalePrice  float64    `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price"`
	Category   string     `gorm:"size:100;index" json:"category,omitempty"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	// Free-form import metadata: applied markup, source tariff, reference code.
	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

func (Material) TableName() string {
	return "materials"
}
