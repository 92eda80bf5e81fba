package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateVersionDTO is one priced interval of a key's history
type RateVersionDTO struct {
	UUID          string          `json:"uuid"`
	PricingKey    string          `json:"pricing_key"`
	RateAmount    decimal.Decimal `json:"rate_amount"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OpenRateVersionRequest supersedes the open version of a pricing key.
// EffectiveFrom defaults to today when omitted.
type OpenRateVersionRequest struct {
	LocationCode    string          `json:"location_code,omitempty"`
	OriginCode      string          `json:"origin_code,omitempty"`
	DestinationCode string          `json:"destination_code,omitempty"`
	TransportMode   string          `json:"transport_mode,omitempty"`
	RateAmount      decimal.Decimal `json:"rate_amount"`
	EffectiveFrom   *time.Time      `json:"effective_from,omitempty"`
	Actor           string          `json:"actor" validate:"required"`
}

// OpenRateVersionResponse reports the new open version and, when one
// existed, the version it closed
type OpenRateVersionResponse struct {
	Message       string          `json:"message"`
	Version       RateVersionDTO  `json:"version"`
	ClosedVersion *RateVersionDTO `json:"closed_version,omitempty"`
}

// GetEffectiveRateRequest resolves the version covering AsOf (default today)
type GetEffectiveRateRequest struct {
	LocationCode    string     `json:"location_code,omitempty"`
	OriginCode      string     `json:"origin_code,omitempty"`
	DestinationCode string     `json:"destination_code,omitempty"`
	TransportMode   string     `json:"transport_mode,omitempty"`
	AsOf            *time.Time `json:"as_of,omitempty"`
}

// GetEffectiveRateResponse carries the resolved version
type GetEffectiveRateResponse struct {
	Message string         `json:"message"`
	Version RateVersionDTO `json:"version"`
}

// RateHistoryResponse lists a key's append-only version history, newest first
type RateHistoryResponse struct {
	Message string           `json:"message"`
	Items   []RateVersionDTO `json:"items"`
}

// WeightTierDTO is one weight band of a rate version
type WeightTierDTO struct {
	ID            uint                `json:"id"`
	RateVersionID uint                `json:"rate_version_id"`
	MinWeightKg   decimal.Decimal     `json:"min_weight_kg"`
	MaxWeightKg   decimal.NullDecimal `json:"max_weight_kg"`
	RateAmount    decimal.Decimal     `json:"rate_amount"`
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CreateWeightTierRequest adds a weight band to a rate version
type CreateWeightTierRequest struct {
	RateVersionUUID string           `json:"rate_version_uuid" validate:"required"`
	MinWeightKg     decimal.Decimal  `json:"min_weight_kg"`
	MaxWeightKg     *decimal.Decimal `json:"max_weight_kg,omitempty"`
	RateAmount      decimal.Decimal  `json:"rate_amount"`
	Actor           string           `json:"actor" validate:"required"`
}

// CreateWeightTierResponse reports the created tier
type CreateWeightTierResponse struct {
	Message string        `json:"message"`
	Tier    WeightTierDTO `json:"tier"`
}

// DeactivateWeightTierRequest soft-disables a tier
type DeactivateWeightTierRequest struct {
	TierID uint   `json:"tier_id" validate:"required"`
	Actor  string `json:"actor" validate:"required"`
}

// DeactivateWeightTierResponse confirms the deactivation
type DeactivateWeightTierResponse struct {
	Message string `json:"message"`
}

// ResolveTierRequest selects the band matching a chargeable weight
type ResolveTierRequest struct {
	RateVersionUUID    string          `json:"rate_version_uuid" validate:"required"`
	ChargeableWeightKg decimal.Decimal `json:"chargeable_weight_kg"`
}

// ResolveTierResponse carries the matched tier
type ResolveTierResponse struct {
	Message string        `json:"message"`
	Tier    WeightTierDTO `json:"tier"`
}

// LocationDTO is one catalog location
type LocationDTO struct {
	ID           uint   `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	LocationType string `json:"location_type"`
	IsActive     bool   `json:"is_active"`
}

// CreateLocationRequest registers a new catalog location
type CreateLocationRequest struct {
	Code         string `json:"code" validate:"required,max=12"`
	Name         string `json:"name" validate:"required,max=120"`
	Country      string `json:"country" validate:"required,max=80"`
	LocationType string `json:"location_type" validate:"required,oneof=AIRPORT SEAPORT"`
	Actor        string `json:"actor" validate:"required"`
}

// CreateLocationResponse reports the created location
type CreateLocationResponse struct {
	Message  string      `json:"message"`
	Location LocationDTO `json:"location"`
}

// ListLocationsResponse returns active locations ordered by type and code
type ListLocationsResponse struct {
	Message string        `json:"message"`
	Items   []LocationDTO `json:"items"`
}
