package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingKey(t *testing.T) {
	t.Run("LocationScope", func(t *testing.T) {
		key := LocationPricingKey(" bog ")
		require.NoError(t, key.Validate())
		assert.False(t, key.IsRoute())
		assert.Equal(t, "LOC:BOG", key.String())
	})

	t.Run("RouteScope", func(t *testing.T) {
		key := RoutePricingKey("bog", "mia", TransportModeAir)
		require.NoError(t, key.Validate())
		assert.True(t, key.IsRoute())
		assert.Equal(t, "RTE:BOG->MIA:AIR", key.String())
	})

	t.Run("ModeDistinguishesRoutes", func(t *testing.T) {
		air := RoutePricingKey("BOG", "MIA", TransportModeAir)
		sea := RoutePricingKey("BOG", "MIA", TransportModeSea)
		assert.NotEqual(t, air.String(), sea.String())
	})

	t.Run("MixedScopesRejected", func(t *testing.T) {
		key := PricingKey{LocationCode: "BOG", OriginCode: "BOG", DestinationCode: "MIA"}
		assert.Error(t, key.Validate())
	})

	t.Run("PartialRouteRejected", func(t *testing.T) {
		key := PricingKey{OriginCode: "BOG"}
		assert.Error(t, key.Validate())
	})

	t.Run("InvalidModeRejected", func(t *testing.T) {
		key := RoutePricingKey("BOG", "MIA", TransportMode("TRUCK"))
		assert.Error(t, key.Validate())
	})

	t.Run("EmptyKeyRejected", func(t *testing.T) {
		assert.Error(t, PricingKey{}.Validate())
	})
}
