// Package domain contains the persisted country model and the merge and
// derivation rules applied during a refresh cycle.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Country is one row of reference data, keyed by a surrogate ID with a
// case-insensitive natural key on the name.
type Country struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	Name string `gorm:"type:text;not null" json:"name"`
	// NameNormalized carries the storage-level uniqueness constraint.
	// Display casing is preserved in Name.
	NameNormalized string `gorm:"type:text;not null;uniqueIndex" json:"-"`

	Capital      *string  `gorm:"type:text" json:"capital"`
	Region       *string  `gorm:"type:text" json:"region"`
	Population   int64    `gorm:"not null" json:"population"`
	CurrencyCode *string  `gorm:"type:text" json:"currency_code"`
	ExchangeRate *float64 `json:"exchange_rate"`
	EstimatedGDP float64  `gorm:"column:estimated_gdp;not null;default:0" json:"estimated_gdp"`
	FlagURL      *string  `gorm:"type:text" json:"flag_url"`

	LastRefreshedAt time.Time `gorm:"not null" json:"last_refreshed_at"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Country) TableName() string { return "countries" }

// NormalizeName produces the lookup key used for case-insensitive identity.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
