package models

import "time"

// Setting is one company-profile value (name, logo URL, default markup...).
// Settings live in the database and are loaded per request so a restart or
// a second instance never sees stale values.
type Setting struct {
	Key       string    `gorm:"size:100;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedBy string    `gorm:"size:255" json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Well-known setting keys.
const (
	SettingCompanyName   = "company_name"
	SettingCompanyLogo   = "company_logo_url"
	SettingCompanyAddr   = "company_address"
	SettingDefaultMarkup = "default_markup_pct"
)
