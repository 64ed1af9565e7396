package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tariff document lifecycle.
const (
	TariffStatusUploaded  = "uploaded"
	TariffStatusExtracted = "extracted"
	TariffStatusImported  = "imported"
	TariffStatusFailed    = "failed"
)

// TariffDocument is an uploaded supplier price list (PDF). The file itself
// lives in the document store; the row keeps the storage path and a SHA-256
// of the content for deduplication.
type TariffDocument struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Category   string     `gorm:"size:100;not null" json:"category"`

	FileName    string `gorm:"size:255;not null" json:"file_name"`
	StoragePath string `gorm:"size:500;not null" json:"storage_path"`
	FileHash    string `gorm:"size:64;index" json:"file_hash"`
	FileSize    int64  `json:"file_size"`

	Status        string `gorm:"size:20;not null;default:'uploaded';index" json:"status"`
	ItemCount     int    `gorm:"default:0" json:"item_count"`
	FailureReason string `gorm:"type:text" json:"failure_reason,omitempty"`

	UploadedBy string     `gorm:"size:255" json:"uploaded_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (t *TariffDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

func (TariffDocument) TableName() string {
	return "tariff_documents"
}
