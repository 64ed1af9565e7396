package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice is a hash-chained billing record. The chain is global: each
// invoice stores the hash of the invoice created immediately before it,
// system-wide, so any tampering with a past invoice breaks every later
// link. At most one invoice exists per obra.
type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObraID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"obra_id"`
	Obra   *Obra     `gorm:"foreignKey:ObraID" json:"obra,omitempty"`

	// Folio is the human-readable sequential number, e.g. ODP-2026-00042.
	Folio    string `gorm:"size:20;uniqueIndex;not null" json:"folio"`
	Sequence int64  `gorm:"not null;index" json:"sequence"`

	Hash     string `gorm:"size:64;not null" json:"hash"`
	PrevHash string `gorm:"size:64;not null" json:"prev_hash"`

	QRPayload string         `gorm:"size:255" json:"qr_payload"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	Total     float64        `gorm:"type:decimal(15,2);not null" json:"total"`

	IssuedAt  time.Time `json:"issued_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

func (Invoice) TableName() string {
	return "invoices"
}

// ChainCounter is a singleton row holding the tip of the invoice chain.
// It is read with a row lock and updated in the same transaction that
// inserts the invoice, so two submissions can never reference the same
// previous hash.
type ChainCounter struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	LastSequence int64  `gorm:"not null;default:0" json:"last_sequence"`
	LastHash     string `gorm:"size:64;not null;default:''" json:"last_hash"`
	UpdatedAt    time.Time
}

func (ChainCounter) TableName() string {
	return "chain_counters"
}
