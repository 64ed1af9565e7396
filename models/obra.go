package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ObraState is the lifecycle state of a project.
type ObraState string

const (
	ObraLead       ObraState = "lead"
	ObraQuote      ObraState = "quote"
	ObraInProgress ObraState = "in_progress"
	ObraCompleted  ObraState = "completed"
	ObraCancelled  ObraState = "cancelled"
)

// obraTransitions is the allowed forward path plus cancellation from any
// non-final state. Completed obras never change state again.
var obraTransitions = map[ObraState][]ObraState{
	ObraLead:       {ObraQuote, ObraCancelled},
	ObraQuote:      {ObraInProgress, ObraCancelled},
	ObraInProgress: {ObraCompleted, ObraCancelled},
	ObraCompleted:  {},
	ObraCancelled:  {},
}

// CanTransition reports whether an obra may move from s to target.
func (s ObraState) CanTransition(target ObraState) bool {
	for _, next := range obraTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known state.
func (s ObraState) Valid() bool {
	_, ok := obraTransitions[s]
	return ok
}

// Obra is a construction project tracked from lead to completion.
type Obra struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	State      ObraState `gorm:"size:20;not null;default:'lead';index" json:"state"`
	Progress   float64   `gorm:"type:decimal(5,2);default:0" json:"progress"` // 0-100
	QuoteTotal float64   `gorm:"type:decimal(15,2);default:0" json:"quote_total"`

	// Technical memo drafted by the AI assistant, editable by staff.
	TechnicalMemo string `gorm:"type:text" json:"technical_memo,omitempty"`

	// Site location for field check-ins. GeofenceJSON holds an optional
	// polygon (utils.Geofence) around the site.
	SiteLat      *float64 `json:"site_lat,omitempty"`
	SiteLon      *float64 `json:"site_lon,omitempty"`
	GeofenceJSON string   `gorm:"type:text" json:"geofence_json,omitempty"`

	// Client approval captured through the portal.
	Approved       bool           `gorm:"default:false" json:"approved"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
	ApprovalRecord datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"approval_record,omitempty"`

	CreatedBy string     `gorm:"size:255" json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	BudgetItems []BudgetItem    `gorm:"foreignKey:ObraID" json:"budget_items,omitempty"`
	Timeline    []TimelineEntry `gorm:"foreignKey:ObraID" json:"timeline,omitempty"`
	Invoice     *Invoice        `gorm:"foreignKey:ObraID" json:"invoice,omitempty"`
}

func (o *Obra) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

func (Obra) TableName() string {
	return "obras"
}

// ApprovalInfo is the JSON shape stored in Obra.ApprovalRecord.
type ApprovalInfo struct {
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"` // "portal" or "manual"
}
