package businessflow

import (
	"fmt"

	"github.com/andescargo/freight-quotes/utils"
	"github.com/shopspring/decimal"
)

var cm3PerM3 = decimal.NewFromInt(1_000_000)

var maxPieceDimension = decimal.NewFromInt(utils.MaxPieceDimension)

// Quantize rounds a decimal to the given number of fractional digits using
// half-away-from-zero rounding. Every numeric output of the engine passes
// through here so repeated calculations on the same inputs stay
// byte-identical.
func Quantize(value decimal.Decimal, scale int32) decimal.Decimal {
	return value.Round(scale)
}

// PieceInput is one physical item of a shipment as supplied by the caller
type PieceInput struct {
	WeightKg decimal.Decimal `json:"weight_kg"`
	LengthCm decimal.Decimal `json:"length_cm"`
	WidthCm  decimal.Decimal `json:"width_cm"`
	HeightCm decimal.Decimal `json:"height_cm"`
}

// PieceCalculation is the normalized per-piece result owned by the quote it
// belongs to
type PieceCalculation struct {
	WeightKg           decimal.Decimal `json:"weight_kg"`
	LengthCm           decimal.Decimal `json:"length_cm"`
	WidthCm            decimal.Decimal `json:"width_cm"`
	HeightCm           decimal.Decimal `json:"height_cm"`
	VolumeCm3          decimal.Decimal `json:"volume_cm3"`
	VolumetricWeightKg decimal.Decimal `json:"volumetric_weight_kg"`
}

// ShipmentTotals aggregates a piece list into the values the pricing
// decision needs
type ShipmentTotals struct {
	Pieces                  []PieceCalculation `json:"pieces"`
	ActualWeightTotalKg     decimal.Decimal    `json:"actual_weight_total_kg"`
	VolumetricWeightTotalKg decimal.Decimal    `json:"volumetric_weight_total_kg"`
	VolumeTotalM3           decimal.Decimal    `json:"volume_total_m3"`
}

// AggregateShipment reduces the piece list into per-piece calculations and
// quantized totals. Pure function of its inputs; all validation happens here
// before any arithmetic so callers never persist a partially computed result.
func AggregateShipment(pieces []PieceInput, volumetricFactor decimal.Decimal) (*ShipmentTotals, error) {
	if len(pieces) == 0 {
		return nil, ErrNoPieces
	}
	if len(pieces) > utils.MaxPiecesPerQuote {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyPieces, len(pieces), utils.MaxPiecesPerQuote)
	}
	if !volumetricFactor.IsPositive() {
		return nil, ErrInvalidVolumetricFactor
	}

	totals := &ShipmentTotals{Pieces: make([]PieceCalculation, 0, len(pieces))}
	actualWeight := decimal.Zero
	volumetricWeight := decimal.Zero
	volumeCm3 := decimal.Zero

	for i, piece := range pieces {
		if err := validatePiece(i, piece); err != nil {
			return nil, err
		}

		pieceVolume := piece.LengthCm.Mul(piece.WidthCm).Mul(piece.HeightCm)
		pieceVolumetricWeight := pieceVolume.Div(volumetricFactor)

		actualWeight = actualWeight.Add(piece.WeightKg)
		volumetricWeight = volumetricWeight.Add(pieceVolumetricWeight)
		volumeCm3 = volumeCm3.Add(pieceVolume)

		totals.Pieces = append(totals.Pieces, PieceCalculation{
			WeightKg:           Quantize(piece.WeightKg, utils.ScaleWeight),
			LengthCm:           Quantize(piece.LengthCm, utils.ScaleDimension),
			WidthCm:            Quantize(piece.WidthCm, utils.ScaleDimension),
			HeightCm:           Quantize(piece.HeightCm, utils.ScaleDimension),
			VolumeCm3:          Quantize(pieceVolume, utils.ScaleVolumeCm3),
			VolumetricWeightKg: Quantize(pieceVolumetricWeight, utils.ScaleWeight),
		})
	}

	totals.ActualWeightTotalKg = Quantize(actualWeight, utils.ScaleWeight)
	totals.VolumetricWeightTotalKg = Quantize(volumetricWeight, utils.ScaleWeight)
	totals.VolumeTotalM3 = Quantize(volumeCm3.Div(cm3PerM3), utils.ScaleVolumeM3)

	return totals, nil
}

func validatePiece(index int, piece PieceInput) error {
	dims := []struct {
		name  string
		value decimal.Decimal
	}{
		{"weight_kg", piece.WeightKg},
		{"length_cm", piece.LengthCm},
		{"width_cm", piece.WidthCm},
		{"height_cm", piece.HeightCm},
	}
	for _, dim := range dims {
		if !dim.value.IsPositive() {
			return fmt.Errorf("%w: piece %d %s must be greater than zero", ErrPieceOutOfRange, index+1, dim.name)
		}
		if dim.value.GreaterThan(maxPieceDimension) {
			return fmt.Errorf("%w: piece %d %s exceeds %d", ErrPieceOutOfRange, index+1, dim.name, utils.MaxPieceDimension)
		}
	}
	return nil
}
