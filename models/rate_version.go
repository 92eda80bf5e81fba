package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateVersion is one priced interval of the catalog history for a pricing key.
// Rows are append-only: a version is created OPEN (no end date) and is only
// ever mutated once, to close it when a newer version supersedes it.
//
// Invariant: at most one row per pricing key may be open (is_active AND
// effective_to IS NULL) at any time, enforced by the partial unique index
// uniq_open_rate_per_key and re-checked transactionally by the catalog flow.
type RateVersion struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	// Canonical pricing key plus its decomposed columns for reporting
	PricingKey      string `gorm:"size:120;not null;index:idx_rate_versions_key;uniqueIndex:uniq_open_rate_per_key,where:is_active AND effective_to IS NULL" json:"pricing_key"`
	LocationCode    string `gorm:"size:12" json:"location_code,omitempty"`
	OriginCode      string `gorm:"size:12" json:"origin_code,omitempty"`
	DestinationCode string `gorm:"size:12" json:"destination_code,omitempty"`
	TransportMode   string `gorm:"size:10" json:"transport_mode,omitempty"`

	RateAmount    decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"rate_amount"`
	EffectiveFrom time.Time       `gorm:"type:date;not null;index:idx_rate_versions_effective_from" json:"effective_from"`
	EffectiveTo   *time.Time      `gorm:"type:date" json:"effective_to,omitempty"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`

	CreatedBy string    `gorm:"size:120" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (rv *RateVersion) BeforeCreate(tx *gorm.DB) error {
	if rv.UUID == uuid.Nil {
		rv.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (RateVersion) TableName() string {
	return "rate_versions"
}

// Key reconstructs the PricingKey value from the decomposed columns
func (rv *RateVersion) Key() PricingKey {
	if rv.LocationCode != "" {
		return LocationPricingKey(rv.LocationCode)
	}
	return RoutePricingKey(rv.OriginCode, rv.DestinationCode, TransportMode(rv.TransportMode))
}

// IsOpen reports whether this version is the current one for its key
func (rv *RateVersion) IsOpen() bool {
	return rv.IsActive && rv.EffectiveTo == nil
}

// CoversDate reports whether the version's effective interval contains asOf.
// Both bounds are inclusive; a nil effective_to means open-ended.
func (rv *RateVersion) CoversDate(asOf time.Time) bool {
	if asOf.Before(rv.EffectiveFrom) {
		return false
	}
	return rv.EffectiveTo == nil || !asOf.After(*rv.EffectiveTo)
}

// RateVersionFilter represents filter criteria for rate version queries
type RateVersionFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	PricingKey *string    `json:"pricing_key,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
	OpenOnly   *bool      `json:"open_only,omitempty"`
}
