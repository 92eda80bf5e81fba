package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateVersionRepositoryImpl implements RateVersionRepository interface
type RateVersionRepositoryImpl struct {
	*BaseRepository[models.RateVersion, models.RateVersionFilter]
}

// NewRateVersionRepository creates a new rate version repository
func NewRateVersionRepository(db *gorm.DB) RateVersionRepository {
	return &RateVersionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RateVersion, models.RateVersionFilter](db),
	}
}

// ByUUID finds a rate version by UUID
func (r *RateVersionRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.RateVersion, error) {
	db := r.getDB(ctx)
	var version models.RateVersion
	err := db.Where("uuid = ?", id).Last(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rate version by UUID: %w", err)
	}
	return &version, nil
}

// EffectiveAsOf returns the active version of key whose interval covers asOf.
// History may carry transient overlaps from data correction, so the query
// prefers the latest effective_from and breaks ties on the newest row.
func (r *RateVersionRepositoryImpl) EffectiveAsOf(ctx context.Context, key models.PricingKey, asOf time.Time) (*models.RateVersion, error) {
	db := r.getDB(ctx)
	asOf = utils.DateOnly(asOf)

	var version models.RateVersion
	err := db.Where("pricing_key = ? AND is_active = ? AND effective_from <= ?", key.String(), true, asOf).
		Where("effective_to IS NULL OR effective_to >= ?", asOf).
		Order("effective_from DESC, id DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find effective rate version: %w", err)
	}
	return &version, nil
}

// OpenForUpdate loads the open version for key under SELECT ... FOR UPDATE.
// Must be called inside a transaction; the row lock serializes competing
// close-and-open sequences on the same key.
func (r *RateVersionRepositoryImpl) OpenForUpdate(ctx context.Context, key models.PricingKey) (*models.RateVersion, error) {
	db := r.getDB(ctx)

	var version models.RateVersion
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pricing_key = ? AND is_active = ? AND effective_to IS NULL", key.String(), true).
		Order("id DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock open rate version: %w", err)
	}
	return &version, nil
}

// Close sets the end date on a version and deactivates it
func (r *RateVersionRepositoryImpl) Close(ctx context.Context, id uint, effectiveTo time.Time) error {
	db := r.getDB(ctx)

	result := db.Model(&models.RateVersion{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"effective_to": utils.DateOnly(effectiveTo),
			"is_active":    false,
			"updated_at":   utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close rate version %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("rate version %d not found", id)
	}
	return nil
}

// CountOpen counts open versions for key; used to re-verify the exclusivity
// invariant before commit
func (r *RateVersionRepositoryImpl) CountOpen(ctx context.Context, key models.PricingKey) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.RateVersion{}).
		Where("pricing_key = ? AND is_active = ? AND effective_to IS NULL", key.String(), true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count open rate versions: %w", err)
	}
	return count, nil
}

// History lists the full append-only version history of a key, newest first
func (r *RateVersionRepositoryImpl) History(ctx context.Context, key models.PricingKey, limit, offset int) ([]*models.RateVersion, error) {
	db := r.getDB(ctx)

	var versions []*models.RateVersion
	query := db.Where("pricing_key = ?", key.String()).Order("effective_from DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rate version history: %w", err)
	}
	return versions, nil
}
