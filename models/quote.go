package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Chargeable basis constants
const (
	ChargeableBasisWeight = "WEIGHT"
	ChargeableBasisVolume = "VOLUME"
)

// Quote is the priced result of one calculation request. It is created
// exactly once, together with all of its items, and never mutated afterwards
// (append-only ledger entry).
type Quote struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	TransportMode string `gorm:"size:10;not null" json:"transport_mode"`
	PricingKey    string `gorm:"size:120;index:idx_quotes_pricing_key" json:"pricing_key,omitempty"`

	AppliedRateVersionID *uint `gorm:"index:idx_quotes_rate_version" json:"applied_rate_version_id,omitempty"`
	AppliedTierID        *uint `json:"applied_tier_id,omitempty"`

	PiecesCount             int             `gorm:"not null" json:"pieces_count"`
	ActualWeightTotalKg     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"actual_weight_total_kg"`
	VolumetricWeightTotalKg decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"volumetric_weight_total_kg"`
	VolumeTotalM3           decimal.Decimal `gorm:"type:decimal(12,6);not null" json:"volume_total_m3"`
	ChargeableBasis         string          `gorm:"size:10;not null" json:"chargeable_basis"`
	ChargeableValue         decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"chargeable_value"`
	RateApplied             decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"rate_applied"`
	TotalAmount             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	CreatedBy string    `gorm:"size:120;index:idx_quotes_created_by" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_quotes_created_at" json:"created_at"`

	Items              []QuoteItem  `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	AppliedRateVersion *RateVersion `gorm:"foreignKey:AppliedRateVersionID" json:"applied_rate_version,omitempty"`
	AppliedTier        *WeightTier  `gorm:"foreignKey:AppliedTierID" json:"applied_tier,omitempty"`
}

// BeforeCreate ensures UUID is set
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem stores the normalized calculation of one physical piece. Items
// are owned by their quote and share its immutability.
type QuoteItem struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	QuoteID uint `gorm:"not null;index:idx_quote_items_quote" json:"quote_id"`

	WeightKg           decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"weight_kg"`
	LengthCm           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"length_cm"`
	WidthCm            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"width_cm"`
	HeightCm           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"height_cm"`
	VolumeCm3          decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"volume_cm3"`
	VolumetricWeightKg decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"volumetric_weight_kg"`
}

// TableName specifies the table name for GORM
func (QuoteItem) TableName() string {
	return "quote_items"
}

// QuoteFilter represents filter criteria for quote queries
type QuoteFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	PricingKey    *string    `json:"pricing_key,omitempty"`
	TransportMode *string    `json:"transport_mode,omitempty"`
	CreatedBy     *string    `json:"created_by,omitempty"`
}
