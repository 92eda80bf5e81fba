package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andescargo/freight-quotes/models"
	"gorm.io/gorm"
)

// LocationRepositoryImpl implements LocationRepository interface
type LocationRepositoryImpl struct {
	*BaseRepository[models.Location, models.LocationFilter]
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &LocationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Location, models.LocationFilter](db),
	}
}

// ByCode finds a location by its unique code
func (r *LocationRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Location, error) {
	db := r.getDB(ctx)

	var location models.Location
	err := db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).Last(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find location by code: %w", err)
	}
	return &location, nil
}

// ListActive retrieves active locations, optionally filtered by type, ordered by code
func (r *LocationRepositoryImpl) ListActive(ctx context.Context, locationType string) ([]*models.Location, error) {
	db := r.getDB(ctx)

	query := db.Where("is_active = ?", true)
	if locationType != "" {
		query = query.Where("location_type = ?", locationType)
	}

	var locations []*models.Location
	err := query.Order("location_type, code").Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active locations: %w", err)
	}
	return locations, nil
}
