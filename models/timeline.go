package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timeline entry types.
const (
	EntryComment   = "comment"
	EntryLogistics = "logistics"
	EntryDelay     = "delay"
	EntryMilestone = "milestone"
)

// ValidEntryType reports whether t is a known timeline entry type.
func ValidEntryType(t string) bool {
	switch t {
	case EntryComment, EntryLogistics, EntryDelay, EntryMilestone:
		return true
	}
	return false
}

// TimelineEntry is an append-only note on an obra. Public entries are
// visible through the client portal; private ones are staff-only. The
// application never edits or deletes entries.
type TimelineEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObraID uuid.UUID `gorm:"type:uuid;not null;index" json:"obra_id"`

	Type   string `gorm:"size:20;not null;default:'comment'" json:"type"`
	Text   string `gorm:"type:text;not null" json:"text"`
	Public bool   `gorm:"default:false" json:"public"`

	// Optional field position; checked against the obra geofence when set.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	Author    string    `gorm:"size:255" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *TimelineEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

func (TimelineEntry) TableName() string {
	return "timeline_entries"
}
