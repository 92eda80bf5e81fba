package models

import (
	"time"
)

// Location type constants
const (
	LocationTypeAirport = "AIRPORT"
	LocationTypeSeaport = "SEAPORT"
)

// Location represents a catalog origin/destination point (airport or seaport)
// that anchors location-scoped pricing keys
type Location struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string    `gorm:"size:12;not null;uniqueIndex:uniq_locations_code" json:"code"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Country      string    `gorm:"size:80;not null;index:idx_locations_country" json:"country"`
	LocationType string    `gorm:"size:16;not null;index:idx_locations_type" json:"location_type"`
	IsActive     bool      `gorm:"not null;default:true;index:idx_locations_is_active" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// PricingKey returns the location-scoped pricing key for this location
func (l *Location) PricingKey() PricingKey {
	return LocationPricingKey(l.Code)
}

// LocationFilter represents filter criteria for location queries
type LocationFilter struct {
	ID           *uint   `json:"id,omitempty"`
	Code         *string `json:"code,omitempty"`
	Country      *string `json:"country,omitempty"`
	LocationType *string `json:"location_type,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}
