package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tierFlowHarness struct {
	catalog *repository.MemoryCatalog
	flow    WeightTierFlow
	version *models.RateVersion
}

func newTierFlowHarness(t *testing.T) *tierFlowHarness {
	t.Helper()
	catalog := repository.NewMemoryCatalog()
	key := models.RoutePricingKey("BOG", "MIA", models.TransportModeAir)
	version := seedOpenVersion(t, catalog, key, "5.0", utils.Today().AddDate(0, 0, -7))
	flow := NewWeightTierFlow(
		catalog.WeightTiers(),
		catalog.RateVersions(),
		catalog.AuditLogs(),
		catalog,
		NewLocalKeyLocker(),
		time.Second,
		nil,
	)
	return &tierFlowHarness{catalog: catalog, flow: flow, version: version}
}

func (h *tierFlowHarness) createTier(ctx context.Context, min, max, rate string) (*dto.CreateWeightTierResponse, error) {
	req := &dto.CreateWeightTierRequest{
		RateVersionUUID: h.version.UUID.String(),
		MinWeightKg:     dec(min),
		RateAmount:      dec(rate),
		Actor:           "admin@andescargo.test",
	}
	if max != "" {
		maxDec := dec(max)
		req.MaxWeightKg = &maxDec
	}
	return h.flow.CreateTier(ctx, req)
}

func TestCreateTier(t *testing.T) {
	ctx := context.Background()

	t.Run("BoundedAndUnboundedBands", func(t *testing.T) {
		h := newTierFlowHarness(t)

		first, err := h.createTier(ctx, "0", "100", "5.0")
		require.NoError(t, err)
		assert.True(t, first.Tier.MaxWeightKg.Valid)

		second, err := h.createTier(ctx, "100.01", "", "4.0")
		require.NoError(t, err)
		assert.False(t, second.Tier.MaxWeightKg.Valid)
	})

	t.Run("OverlappingBandRejected", func(t *testing.T) {
		h := newTierFlowHarness(t)

		_, err := h.createTier(ctx, "0", "100", "5.0")
		require.NoError(t, err)

		_, err = h.createTier(ctx, "50", "150", "4.5")
		assert.ErrorIs(t, err, ErrTierOverlap)

		// shared boundary counts as an overlap, both bounds are inclusive
		_, err = h.createTier(ctx, "100", "200", "4.5")
		assert.ErrorIs(t, err, ErrTierOverlap)
	})

	t.Run("UnboundedBandBlocksEverythingAbove", func(t *testing.T) {
		h := newTierFlowHarness(t)

		_, err := h.createTier(ctx, "100.01", "", "4.0")
		require.NoError(t, err)

		_, err = h.createTier(ctx, "500", "600", "3.5")
		assert.ErrorIs(t, err, ErrTierOverlap)
	})

	t.Run("InvertedBoundsRejected", func(t *testing.T) {
		h := newTierFlowHarness(t)

		_, err := h.createTier(ctx, "100", "50", "5.0")
		assert.ErrorIs(t, err, ErrTierBoundsInvalid)
	})

	t.Run("NegativeMinimumRejected", func(t *testing.T) {
		h := newTierFlowHarness(t)

		_, err := h.createTier(ctx, "-1", "100", "5.0")
		assert.ErrorIs(t, err, ErrTierBoundsInvalid)
	})

	t.Run("DeactivatedSiblingIgnoredByOverlapCheck", func(t *testing.T) {
		h := newTierFlowHarness(t)

		created, err := h.createTier(ctx, "0", "100", "5.0")
		require.NoError(t, err)

		_, err = h.flow.DeactivateTier(ctx, &dto.DeactivateWeightTierRequest{
			TierID: created.Tier.ID,
			Actor:  "admin@andescargo.test",
		})
		require.NoError(t, err)

		_, err = h.createTier(ctx, "50", "150", "4.5")
		assert.NoError(t, err)
	})

	t.Run("UnknownRateVersion", func(t *testing.T) {
		h := newTierFlowHarness(t)

		_, err := h.flow.CreateTier(ctx, &dto.CreateWeightTierRequest{
			RateVersionUUID: "00000000-0000-0000-0000-000000000000",
			MinWeightKg:     dec("0"),
			RateAmount:      dec("5.0"),
			Actor:           "admin@andescargo.test",
		})
		assert.ErrorIs(t, err, ErrRateVersionNotFound)
	})

	t.Run("EmitsAuditEvent", func(t *testing.T) {
		h := newTierFlowHarness(t)

		_, err := h.createTier(ctx, "0", "100", "5.0")
		require.NoError(t, err)

		events, err := h.catalog.AuditLogs().ListByAction(ctx, models.AuditActionWeightTierCreated, 10, 0)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestResolveTier(t *testing.T) {
	ctx := context.Background()
	h := newTierFlowHarness(t)

	_, err := h.createTier(ctx, "0", "100", "5.0")
	require.NoError(t, err)
	_, err = h.createTier(ctx, "100.01", "", "4.0")
	require.NoError(t, err)

	t.Run("BoundaryWeightMatchesFirstBand", func(t *testing.T) {
		resp, err := h.flow.ResolveTier(ctx, &dto.ResolveTierRequest{
			RateVersionUUID:    h.version.UUID.String(),
			ChargeableWeightKg: dec("100"),
		})
		require.NoError(t, err)
		assert.Equal(t, "5.0000", resp.Tier.RateAmount.StringFixed(4))
	})

	t.Run("HeavierWeightMatchesUnboundedBand", func(t *testing.T) {
		resp, err := h.flow.ResolveTier(ctx, &dto.ResolveTierRequest{
			RateVersionUUID:    h.version.UUID.String(),
			ChargeableWeightKg: dec("150"),
		})
		require.NoError(t, err)
		assert.Equal(t, "4.0000", resp.Tier.RateAmount.StringFixed(4))
		assert.False(t, resp.Tier.MaxWeightKg.Valid)
	})

	t.Run("GapBetweenBands", func(t *testing.T) {
		_, err := h.flow.ResolveTier(ctx, &dto.ResolveTierRequest{
			RateVersionUUID:    h.version.UUID.String(),
			ChargeableWeightKg: dec("100.005"),
		})
		assert.ErrorIs(t, err, ErrTierNotFound)
	})
}

func TestDeactivateTier(t *testing.T) {
	ctx := context.Background()
	h := newTierFlowHarness(t)

	created, err := h.createTier(ctx, "0", "100", "5.0")
	require.NoError(t, err)

	_, err = h.flow.DeactivateTier(ctx, &dto.DeactivateWeightTierRequest{
		TierID: created.Tier.ID,
		Actor:  "admin@andescargo.test",
	})
	require.NoError(t, err)

	_, err = h.flow.ResolveTier(ctx, &dto.ResolveTierRequest{
		RateVersionUUID:    h.version.UUID.String(),
		ChargeableWeightKg: dec("50"),
	})
	assert.ErrorIs(t, err, ErrTierNotFound)

	t.Run("UnknownTier", func(t *testing.T) {
		_, err := h.flow.DeactivateTier(ctx, &dto.DeactivateWeightTierRequest{
			TierID: 9999,
			Actor:  "admin@andescargo.test",
		})
		assert.ErrorIs(t, err, ErrTierNotFound)
	})
}
