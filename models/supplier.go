package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngestionMethod tells the tariff pipeline how a supplier publishes prices.
// Only the PDF path is implemented; "api" suppliers are rejected at upload.
type IngestionMethod string

const (
	IngestionPDF IngestionMethod = "pdf"
	IngestionAPI IngestionMethod = "api"
)

type Supplier struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	ContactName string          `gorm:"size:255" json:"contact_name,omitempty"`
	Email       string          `gorm:"size:100" json:"email,omitempty"`
	Phone       string          `gorm:"size:20" json:"phone,omitempty"`
	Ingestion   IngestionMethod `gorm:"size:10;not null;default:'pdf'" json:"ingestion"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	Materials []Material       `gorm:"foreignKey:SupplierID" json:"materials,omitempty"`
	Tariffs   []TariffDocument `gorm:"foreignKey:SupplierID" json:"tariffs,omitempty"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (Supplier) TableName() string {
	return "suppliers"
}
