package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeightTier refines a RateVersion with a weight-band-scoped rate. A nil
// max_weight_kg means the band is unbounded above. Deactivation is a soft
// flag; tiers are never deleted.
//
// Invariants among active siblings of the same rate version: bands must not
// overlap, and max_weight_kg must be >= min_weight_kg when present.
type WeightTier struct {
	ID            uint `gorm:"primaryKey;autoIncrement" json:"id"`
	RateVersionID uint `gorm:"not null;index:idx_weight_tiers_rate_version" json:"rate_version_id"`

	MinWeightKg decimal.Decimal     `gorm:"type:decimal(12,3);not null" json:"min_weight_kg"`
	MaxWeightKg decimal.NullDecimal `gorm:"type:decimal(12,3)" json:"max_weight_kg"`
	RateAmount  decimal.Decimal     `gorm:"type:decimal(12,4);not null" json:"rate_amount"`
	IsActive    bool                `gorm:"not null;default:true;index:idx_weight_tiers_is_active" json:"is_active"`

	CreatedBy string    `gorm:"size:120" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	RateVersion RateVersion `gorm:"foreignKey:RateVersionID;constraint:OnDelete:CASCADE" json:"rate_version,omitempty"`
}

// TableName specifies the table name for GORM
func (WeightTier) TableName() string {
	return "weight_tiers"
}

// Matches reports whether the chargeable weight falls inside this band.
// Both bounds are inclusive.
func (wt *WeightTier) Matches(weightKg decimal.Decimal) bool {
	if weightKg.LessThan(wt.MinWeightKg) {
		return false
	}
	return !wt.MaxWeightKg.Valid || weightKg.LessThanOrEqual(wt.MaxWeightKg.Decimal)
}

// Overlaps reports whether this band intersects another, treating a missing
// max as +infinity: (newMax is null OR oldMin <= newMax) AND (oldMax is null
// OR newMin <= oldMax).
func (wt *WeightTier) Overlaps(other *WeightTier) bool {
	upperReaches := !wt.MaxWeightKg.Valid || other.MinWeightKg.LessThanOrEqual(wt.MaxWeightKg.Decimal)
	lowerReaches := !other.MaxWeightKg.Valid || wt.MinWeightKg.LessThanOrEqual(other.MaxWeightKg.Decimal)
	return upperReaches && lowerReaches
}

// ValidateBounds checks the band's own interval sanity
func (wt *WeightTier) ValidateBounds() bool {
	if wt.MinWeightKg.IsNegative() {
		return false
	}
	return !wt.MaxWeightKg.Valid || wt.MaxWeightKg.Decimal.GreaterThanOrEqual(wt.MinWeightKg)
}

// WeightTierFilter represents filter criteria for weight tier queries
type WeightTierFilter struct {
	ID            *uint `json:"id,omitempty"`
	RateVersionID *uint `json:"rate_version_id,omitempty"`
	IsActive      *bool `json:"is_active,omitempty"`
}
