package businessflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalogFlow(catalog *repository.MemoryCatalog, locker KeyLocker, lockWait time.Duration) RateCatalogFlow {
	return NewRateCatalogFlow(catalog.RateVersions(), catalog.AuditLogs(), catalog, locker, lockWait, nil)
}

func TestOpenRateVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstVersionForKey", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		resp, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("5.0"),
			Actor:        "admin@andescargo.test",
		})
		require.NoError(t, err)
		assert.Nil(t, resp.ClosedVersion)
		assert.True(t, resp.Version.IsActive)
		assert.Nil(t, resp.Version.EffectiveTo)
		assert.Equal(t, "5.0000", resp.Version.RateAmount.StringFixed(4))
		assert.Equal(t, "LOC:BOG", resp.Version.PricingKey)
	})

	t.Run("SupersedingClosesPreviousVersion", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		monthAgo := utils.Today().AddDate(0, 0, -30)
		first, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode:  "BOG",
			RateAmount:    dec("5.0"),
			EffectiveFrom: &monthAgo,
			Actor:         "admin@andescargo.test",
		})
		require.NoError(t, err)

		second, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("6.0"),
			Actor:        "admin@andescargo.test",
		})
		require.NoError(t, err)

		require.NotNil(t, second.ClosedVersion)
		assert.Equal(t, first.Version.UUID, second.ClosedVersion.UUID)
		require.NotNil(t, second.ClosedVersion.EffectiveTo)
		assert.True(t, second.ClosedVersion.EffectiveTo.Equal(utils.Today()))
		assert.False(t, second.ClosedVersion.IsActive)

		key := models.LocationPricingKey("BOG")
		openCount, err := catalog.RateVersions().CountOpen(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 1, openCount)

		// today resolves to the new open version; the closed one no longer
		// serves lookups, even for dates inside its old window
		today, err := flow.GetEffectiveRate(ctx, &dto.GetEffectiveRateRequest{LocationCode: "BOG"})
		require.NoError(t, err)
		assert.Equal(t, "6.0000", today.Version.RateAmount.StringFixed(4))

		tenDaysAgo := utils.Today().AddDate(0, 0, -10)
		_, err = flow.GetEffectiveRate(ctx, &dto.GetEffectiveRateRequest{LocationCode: "BOG", AsOf: &tenDaysAgo})
		assert.ErrorIs(t, err, ErrRateNotFound)
	})

	t.Run("EffectiveDateBeforeOpenVersionRejected", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		_, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("5.0"),
			Actor:        "admin@andescargo.test",
		})
		require.NoError(t, err)

		yesterday := utils.Today().AddDate(0, 0, -1)
		_, err = flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode:  "BOG",
			RateAmount:    dec("6.0"),
			EffectiveFrom: &yesterday,
			Actor:         "admin@andescargo.test",
		})
		assert.ErrorIs(t, err, ErrEffectiveFromBeforeOpen)
	})

	t.Run("ConcurrentOpensLeaveExactlyOneOpen", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), 5*time.Second)
		key := models.LocationPricingKey("BOG")

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
					LocationCode: "BOG",
					RateAmount:   dec("6.0"),
					Actor:        "admin@andescargo.test",
				})
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, ErrConcurrentRateConflict)
			}
		}
		openCount, err := catalog.RateVersions().CountOpen(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 1, openCount)
	})

	t.Run("LockedKeyFailsFast", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		locker := NewLocalKeyLocker()
		flow := newTestCatalogFlow(catalog, locker, 50*time.Millisecond)

		release, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)
		defer release()

		_, err = flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("6.0"),
			Actor:        "admin@andescargo.test",
		})
		assert.ErrorIs(t, err, ErrConcurrentRateConflict)
	})

	t.Run("EmptyActorRejected", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		_, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("5.0"),
		})
		assert.ErrorIs(t, err, ErrActorRequired)
	})

	t.Run("NonPositiveRateRejected", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		_, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("-5.0"),
			Actor:        "admin@andescargo.test",
		})
		assert.ErrorIs(t, err, ErrInvalidRateAmount)
	})

	t.Run("EmitsAuditEvent", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		_, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			LocationCode: "BOG",
			RateAmount:   dec("5.0"),
			Actor:        "admin@andescargo.test",
		})
		require.NoError(t, err)

		events, err := catalog.AuditLogs().ListByAction(ctx, models.AuditActionRateVersionOpened, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "admin@andescargo.test", events[0].Actor)
	})
}

func TestGetEffectiveRate(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFoundForUnknownKey", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		_, err := flow.GetEffectiveRate(ctx, &dto.GetEffectiveRateRequest{LocationCode: "ZZZ"})
		assert.ErrorIs(t, err, ErrRateNotFound)
	})

	t.Run("InvalidKeyRejected", func(t *testing.T) {
		catalog := repository.NewMemoryCatalog()
		flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

		_, err := flow.GetEffectiveRate(ctx, &dto.GetEffectiveRateRequest{OriginCode: "BOG"})
		require.Error(t, err)
		var be *BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "PRICING_KEY_INVALID", be.Code)
	})
}

func TestGetRateHistory(t *testing.T) {
	ctx := context.Background()
	catalog := repository.NewMemoryCatalog()
	flow := newTestCatalogFlow(catalog, NewLocalKeyLocker(), time.Second)

	monthAgo := utils.Today().AddDate(0, 0, -30)
	for _, rate := range []string{"5.0", "6.0", "7.0"} {
		from := monthAgo
		if rate == "7.0" {
			from = utils.Today()
		} else if rate == "6.0" {
			from = utils.Today().AddDate(0, 0, -15)
		}
		_, err := flow.OpenRateVersion(ctx, &dto.OpenRateVersionRequest{
			OriginCode:      "BOG",
			DestinationCode: "MIA",
			TransportMode:   "AIR",
			RateAmount:      dec(rate),
			EffectiveFrom:   &from,
			Actor:           "admin@andescargo.test",
		})
		require.NoError(t, err)
	}

	history, err := flow.GetRateHistory(ctx, &dto.GetEffectiveRateRequest{
		OriginCode:      "BOG",
		DestinationCode: "MIA",
		TransportMode:   "AIR",
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, history.Items, 3)

	// newest first; only the newest stays open
	assert.Equal(t, "7.0000", history.Items[0].RateAmount.StringFixed(4))
	assert.Nil(t, history.Items[0].EffectiveTo)
	assert.NotNil(t, history.Items[1].EffectiveTo)
	assert.NotNil(t, history.Items[2].EffectiveTo)
}
