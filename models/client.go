package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer of the company. PortalToken is an opaque bearer
// credential: presenting it as a URL segment grants read access to the
// client's obras and the one-click approve action. Tokens are unique and
// never reused; rotation replaces the token and invalidates the old one.
type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ContactName string    `gorm:"size:255" json:"contact_name,omitempty"`
	Email       string    `gorm:"size:100" json:"email,omitempty"`
	Phone       string    `gorm:"size:20" json:"phone,omitempty"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`
	RFC         string    `gorm:"size:13" json:"rfc,omitempty"`

	PortalToken string `gorm:"size:64;uniqueIndex;not null" json:"portal_token"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	Obras []Obra `gorm:"foreignKey:ClientID" json:"obras,omitempty"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.PortalToken == "" {
		c.PortalToken = NewPortalToken()
	}
	return
}

func (Client) TableName() string {
	return "clients"
}

// NewPortalToken builds a fresh portal credential. Two UUIDs concatenated
// without dashes: long enough to be unguessable, short enough for a URL.
func NewPortalToken() string {
	a := uuid.New().String()
	b := uuid.New().String()
	return stripDashes(a) + stripDashes(b)[:16]
}

func stripDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
