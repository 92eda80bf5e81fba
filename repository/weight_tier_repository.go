package repository

import (
	"context"
	"fmt"

	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/utils"
	"gorm.io/gorm"
)

// WeightTierRepositoryImpl implements WeightTierRepository interface
type WeightTierRepositoryImpl struct {
	*BaseRepository[models.WeightTier, models.WeightTierFilter]
}

// NewWeightTierRepository creates a new weight tier repository
func NewWeightTierRepository(db *gorm.DB) WeightTierRepository {
	return &WeightTierRepositoryImpl{
		BaseRepository: NewBaseRepository[models.WeightTier, models.WeightTierFilter](db),
	}
}

// ActiveByRateVersion returns active tiers in resolution order:
// min_weight_kg ascending, id ascending as the stable tie-break
func (r *WeightTierRepositoryImpl) ActiveByRateVersion(ctx context.Context, rateVersionID uint) ([]*models.WeightTier, error) {
	db := r.getDB(ctx)

	var tiers []*models.WeightTier
	err := db.Where("rate_version_id = ? AND is_active = ?", rateVersionID, true).
		Order("min_weight_kg ASC, id ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active weight tiers: %w", err)
	}
	return tiers, nil
}

// Deactivate soft-disables a tier; rows are never deleted
func (r *WeightTierRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	result := db.Model(&models.WeightTier{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate weight tier %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("weight tier %d not found", id)
	}
	return nil
}
