// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/andescargo/freight-quotes/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// TxRunner executes a function as a single atomic unit. The GORM-backed
// runner maps this to a database transaction; the in-memory catalog maps it
// to its internal write lock so composed operations stay torn-read free.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LocationRepository defines operations for catalog locations
type LocationRepository interface {
	ByID(ctx context.Context, id uint) (*models.Location, error)
	ByCode(ctx context.Context, code string) (*models.Location, error)
	ListActive(ctx context.Context, locationType string) ([]*models.Location, error)
	Save(ctx context.Context, location *models.Location) error
}

// RateVersionRepository defines operations for the effective-dated rate catalog
type RateVersionRepository interface {
	ByID(ctx context.Context, id uint) (*models.RateVersion, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.RateVersion, error)
	Save(ctx context.Context, version *models.RateVersion) error
	// EffectiveAsOf returns the active version covering asOf, preferring the
	// latest effective_from and then the most recently created row.
	EffectiveAsOf(ctx context.Context, key models.PricingKey, asOf time.Time) (*models.RateVersion, error)
	// OpenForUpdate loads the currently open version for key with an
	// exclusive row lock held for the remainder of the transaction.
	OpenForUpdate(ctx context.Context, key models.PricingKey) (*models.RateVersion, error)
	// Close transitions a version OPEN -> CLOSED. No other mutation exists.
	Close(ctx context.Context, id uint, effectiveTo time.Time) error
	CountOpen(ctx context.Context, key models.PricingKey) (int64, error)
	History(ctx context.Context, key models.PricingKey, limit, offset int) ([]*models.RateVersion, error)
}

// WeightTierRepository defines operations for weight-band tiers
type WeightTierRepository interface {
	ByID(ctx context.Context, id uint) (*models.WeightTier, error)
	Save(ctx context.Context, tier *models.WeightTier) error
	// ActiveByRateVersion returns active tiers ordered by min_weight_kg
	// ascending, id ascending (the resolution order).
	ActiveByRateVersion(ctx context.Context, rateVersionID uint) ([]*models.WeightTier, error)
	Deactivate(ctx context.Context, id uint) error
}

// QuoteRepository defines operations for persisted quotes
type QuoteRepository interface {
	ByID(ctx context.Context, id uint) (*models.Quote, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Quote, error)
	// Save persists the quote together with all of its items atomically.
	Save(ctx context.Context, quote *models.Quote) error
	ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*models.Quote, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*models.Quote, error)
}

// AuditLogRepository defines operations for audit events emitted by
// administrative actions
type AuditLogRepository interface {
	Save(ctx context.Context, entry *models.AuditLog) error
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListByActor(ctx context.Context, actor string, limit, offset int) ([]*models.AuditLog, error)
}
