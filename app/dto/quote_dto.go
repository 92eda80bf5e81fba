// Package dto contains request and response types exchanged with the engine's callers
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PieceDTO describes one physical piece of a shipment
type PieceDTO struct {
	WeightKg decimal.Decimal `json:"weight_kg"`
	LengthCm decimal.Decimal `json:"length_cm"`
	WidthCm  decimal.Decimal `json:"width_cm"`
	HeightCm decimal.Decimal `json:"height_cm"`
}

// CalculateQuoteRequest prices a shipment against a rate the caller already
// resolved. PiecesCount, when set, must match the supplied piece list.
type CalculateQuoteRequest struct {
	TransportMode    string          `json:"transport_mode" validate:"required,oneof=AIR SEA"`
	Pieces           []PieceDTO      `json:"pieces" validate:"required,min=1,max=200"`
	PiecesCount      *int            `json:"pieces_count,omitempty"`
	RateAmount       decimal.Decimal `json:"rate_amount"`
	VolumetricFactor decimal.Decimal `json:"volumetric_factor"`
}

// PieceCalculationDTO is the normalized per-piece breakdown in responses
type PieceCalculationDTO struct {
	WeightKg           decimal.Decimal `json:"weight_kg"`
	LengthCm           decimal.Decimal `json:"length_cm"`
	WidthCm            decimal.Decimal `json:"width_cm"`
	HeightCm           decimal.Decimal `json:"height_cm"`
	VolumeCm3          decimal.Decimal `json:"volume_cm3"`
	VolumetricWeightKg decimal.Decimal `json:"volumetric_weight_kg"`
}

// QuoteResultResponse is the full immutable pricing breakdown
type QuoteResultResponse struct {
	TransportMode           string                `json:"transport_mode"`
	PiecesCount             int                   `json:"pieces_count"`
	ActualWeightTotalKg     decimal.Decimal       `json:"actual_weight_total_kg"`
	VolumetricWeightTotalKg decimal.Decimal       `json:"volumetric_weight_total_kg"`
	VolumeTotalM3           decimal.Decimal       `json:"volume_total_m3"`
	ChargeableBasis         string                `json:"chargeable_basis"`
	ChargeableValue         decimal.Decimal       `json:"chargeable_value"`
	RateApplied             decimal.Decimal       `json:"rate_applied"`
	TotalAmount             decimal.Decimal       `json:"total_amount"`
	Items                   []PieceCalculationDTO `json:"items"`
}

// CreateQuoteRequest resolves the effective rate for a pricing key and
// persists the priced quote with its items
type CreateQuoteRequest struct {
	TransportMode    string           `json:"transport_mode" validate:"required,oneof=AIR SEA"`
	LocationCode     string           `json:"location_code,omitempty"`
	OriginCode       string           `json:"origin_code,omitempty"`
	DestinationCode  string           `json:"destination_code,omitempty"`
	Pieces           []PieceDTO       `json:"pieces" validate:"required,min=1,max=200"`
	PiecesCount      *int             `json:"pieces_count,omitempty"`
	VolumetricFactor *decimal.Decimal `json:"volumetric_factor,omitempty"`
	CreatedBy        string           `json:"created_by" validate:"required"`
}

// CreateQuoteResponse reports the persisted quote
type CreateQuoteResponse struct {
	Message                string              `json:"message"`
	UUID                   string              `json:"uuid"`
	AppliedRateVersionUUID string              `json:"applied_rate_version_uuid"`
	AppliedTierID          *uint               `json:"applied_tier_id,omitempty"`
	Result                 QuoteResultResponse `json:"result"`
	CreatedAt              string              `json:"created_at"`
}

// QuoteDTO is one persisted quote in listings
type QuoteDTO struct {
	UUID            string          `json:"uuid"`
	TransportMode   string          `json:"transport_mode"`
	PricingKey      string          `json:"pricing_key,omitempty"`
	PiecesCount     int             `json:"pieces_count"`
	ChargeableBasis string          `json:"chargeable_basis"`
	ChargeableValue decimal.Decimal `json:"chargeable_value"`
	RateApplied     decimal.Decimal `json:"rate_applied"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ListQuotesRequest pages through persisted quotes
type ListQuotesRequest struct {
	CreatedBy string `json:"created_by,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// ListQuotesResponse returns quotes newest first
type ListQuotesResponse struct {
	Message string     `json:"message"`
	Items   []QuoteDTO `json:"items"`
}
