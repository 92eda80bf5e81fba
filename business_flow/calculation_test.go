package businessflow

import (
	"testing"

	"github.com/andescargo/freight-quotes/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func piece(weight, length, width, height string) PieceInput {
	return PieceInput{
		WeightKg: dec(weight),
		LengthCm: dec(length),
		WidthCm:  dec(width),
		HeightCm: dec(height),
	}
}

func TestQuantize(t *testing.T) {
	t.Run("HalfAwayFromZero", func(t *testing.T) {
		assert.Equal(t, "1.235", Quantize(dec("1.2345"), 3).String())
		assert.Equal(t, "3", Quantize(dec("2.5"), 0).String())
		assert.Equal(t, "-3", Quantize(dec("-2.5"), 0).String())
		assert.Equal(t, "100.01", Quantize(dec("100.005"), 2).String())
	})

	t.Run("NoDriftOnRepeatedApplication", func(t *testing.T) {
		value := dec("166.6666666")
		once := Quantize(value, utils.ScaleWeight)
		twice := Quantize(once, utils.ScaleWeight)
		assert.Equal(t, once.String(), twice.String())
	})
}

func TestAggregateShipment(t *testing.T) {
	factor := dec("6000")

	t.Run("SinglePieceHeavy", func(t *testing.T) {
		totals, err := AggregateShipment([]PieceInput{piece("20", "100", "100", "100")}, factor)
		require.NoError(t, err)

		assert.Equal(t, "20.000", totals.ActualWeightTotalKg.StringFixed(3))
		assert.Equal(t, "1.000000", totals.VolumeTotalM3.StringFixed(6))
		assert.Equal(t, "166.667", totals.VolumetricWeightTotalKg.StringFixed(3))
		require.Len(t, totals.Pieces, 1)
		assert.Equal(t, "1000000.000", totals.Pieces[0].VolumeCm3.StringFixed(3))
	})

	t.Run("SinglePieceBulky", func(t *testing.T) {
		totals, err := AggregateShipment([]PieceInput{piece("1", "200", "100", "100")}, factor)
		require.NoError(t, err)

		assert.Equal(t, "1.000", totals.ActualWeightTotalKg.StringFixed(3))
		assert.Equal(t, "2.000000", totals.VolumeTotalM3.StringFixed(6))
	})

	t.Run("OrderIndependentTotals", func(t *testing.T) {
		pieces := []PieceInput{
			piece("3.5", "30", "40", "50"),
			piece("12.25", "120", "80", "60"),
			piece("0.75", "10", "10", "10"),
		}
		reversed := []PieceInput{pieces[2], pieces[1], pieces[0]}

		forward, err := AggregateShipment(pieces, factor)
		require.NoError(t, err)
		backward, err := AggregateShipment(reversed, factor)
		require.NoError(t, err)

		assert.Equal(t, forward.ActualWeightTotalKg.String(), backward.ActualWeightTotalKg.String())
		assert.Equal(t, forward.VolumetricWeightTotalKg.String(), backward.VolumetricWeightTotalKg.String())
		assert.Equal(t, forward.VolumeTotalM3.String(), backward.VolumeTotalM3.String())
	})

	t.Run("EmptyPieceList", func(t *testing.T) {
		_, err := AggregateShipment(nil, factor)
		assert.ErrorIs(t, err, ErrNoPieces)
	})

	t.Run("TooManyPieces", func(t *testing.T) {
		pieces := make([]PieceInput, utils.MaxPiecesPerQuote+1)
		for i := range pieces {
			pieces[i] = piece("1", "10", "10", "10")
		}
		_, err := AggregateShipment(pieces, factor)
		assert.ErrorIs(t, err, ErrTooManyPieces)
	})

	t.Run("ZeroVolumetricFactor", func(t *testing.T) {
		_, err := AggregateShipment([]PieceInput{piece("1", "10", "10", "10")}, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidVolumetricFactor)
	})

	t.Run("NegativeVolumetricFactor", func(t *testing.T) {
		_, err := AggregateShipment([]PieceInput{piece("1", "10", "10", "10")}, dec("-6000"))
		assert.ErrorIs(t, err, ErrInvalidVolumetricFactor)
	})

	t.Run("ZeroDimensionRejected", func(t *testing.T) {
		_, err := AggregateShipment([]PieceInput{piece("1", "0", "10", "10")}, factor)
		assert.ErrorIs(t, err, ErrPieceOutOfRange)
	})

	t.Run("NegativeWeightRejected", func(t *testing.T) {
		_, err := AggregateShipment([]PieceInput{piece("-1", "10", "10", "10")}, factor)
		assert.ErrorIs(t, err, ErrPieceOutOfRange)
	})

	t.Run("OversizeDimensionRejected", func(t *testing.T) {
		_, err := AggregateShipment([]PieceInput{piece("1", "100001", "10", "10")}, factor)
		assert.ErrorIs(t, err, ErrPieceOutOfRange)
	})

	t.Run("DimensionAtUpperBoundAccepted", func(t *testing.T) {
		_, err := AggregateShipment([]PieceInput{piece("100000", "100000", "1", "1")}, factor)
		assert.NoError(t, err)
	})
}
