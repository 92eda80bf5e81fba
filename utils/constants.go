// Package utils provides utility functions for the application.
package utils

// Shipment input bounds. The web layer enforces the piece count on its
// forms; the engine re-checks both bounds before any arithmetic runs.
const (
	MinPiecesPerQuote = 1
	MaxPiecesPerQuote = 200

	// Upper bound for every piece dimension: weight (kg) and edges (cm)
	MaxPieceDimension = 100000
)

// Quantization scales for engine outputs
const (
	ScaleWeight    = 3 // kg totals, volumetric weight, chargeable value
	ScaleVolumeM3  = 6 // cubic-meter volumes
	ScaleRate      = 4 // unit rates
	ScaleMoney     = 2 // final currency totals
	ScaleDimension = 2 // stored piece edge lengths
	ScaleVolumeCm3 = 3 // stored per-piece cm3 volumes
)

// DefaultVolumetricFactor is the conventional air-freight divisor (cm3 per
// kg) applied when the caller does not supply one explicitly.
const DefaultVolumetricFactor = "6000"
