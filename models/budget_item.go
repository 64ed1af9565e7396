package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BudgetItem links an obra to a catalog material with the quantity and the
// price actually applied in the quote. AppliedPrice may differ from the
// material's current catalog price; once the quote is assembled the line is
// read-only in all exposed flows.
type BudgetItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObraID     uuid.UUID `gorm:"type:uuid;not null;index" json:"obra_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null" json:"material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`

	Quantity     float64 `gorm:"type:decimal(12,2);not null" json:"quantity"`
	AppliedPrice float64 `gorm:"type:decimal(12,2);not null" json:"applied_price"`
	MarginPct    float64 `gorm:"type:decimal(5,2);default:0" json:"margin_pct"`
	Subtotal     float64 `gorm:"type:decimal(15,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"created_at"`
}

func (b *BudgetItem) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

func (BudgetItem) TableName() string {
	return "budget_items"
}
