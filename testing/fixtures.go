package testing

import (
	"fmt"
	"time"

	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateLocation inserts an active location
func (tf *TestFixtures) CreateLocation(code, locationType string) (*models.Location, error) {
	location := &models.Location{
		Code:         code,
		Name:         fmt.Sprintf("Test location %s", code),
		Country:      "Colombia",
		LocationType: locationType,
		IsActive:     true,
		CreatedAt:    utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(location).Error; err != nil {
		return nil, fmt.Errorf("failed to create location %s: %w", code, err)
	}
	return location, nil
}

// CreateRateVersion inserts an open rate version for a pricing key,
// effective from the given date
func (tf *TestFixtures) CreateRateVersion(key models.PricingKey, rate string, effectiveFrom time.Time) (*models.RateVersion, error) {
	version := &models.RateVersion{
		UUID:            uuid.New(),
		PricingKey:      key.String(),
		LocationCode:    key.LocationCode,
		OriginCode:      key.OriginCode,
		DestinationCode: key.DestinationCode,
		TransportMode:   string(key.Mode),
		RateAmount:      decimal.RequireFromString(rate),
		EffectiveFrom:   utils.DateOnly(effectiveFrom),
		IsActive:        true,
		CreatedBy:       "fixtures",
		CreatedAt:       utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(version).Error; err != nil {
		return nil, fmt.Errorf("failed to create rate version for %s: %w", key.String(), err)
	}
	return version, nil
}

// CreateWeightTier inserts an active weight band on a rate version. Pass an
// empty maxWeight for an unbounded band.
func (tf *TestFixtures) CreateWeightTier(rateVersionID uint, minWeight, maxWeight, rate string) (*models.WeightTier, error) {
	tier := &models.WeightTier{
		RateVersionID: rateVersionID,
		MinWeightKg:   decimal.RequireFromString(minWeight),
		RateAmount:    decimal.RequireFromString(rate),
		IsActive:      true,
		CreatedBy:     "fixtures",
		CreatedAt:     utils.UTCNow(),
	}
	if maxWeight != "" {
		tier.MaxWeightKg = decimal.NullDecimal{Decimal: decimal.RequireFromString(maxWeight), Valid: true}
	}
	if err := tf.DB.DB.Create(tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create weight tier: %w", err)
	}
	return tier, nil
}
