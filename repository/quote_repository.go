package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andescargo/freight-quotes/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteRepositoryImpl implements QuoteRepository interface
type QuoteRepositoryImpl struct {
	*BaseRepository[models.Quote, models.QuoteFilter]
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &QuoteRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Quote, models.QuoteFilter](db),
	}
}

// Save persists the quote together with its items in one atomic write.
// GORM inserts the association rows in the same transaction, so either the
// quote and all items exist or none do.
func (r *QuoteRepositoryImpl) Save(ctx context.Context, quote *models.Quote) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Create(quote).Error
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// ByUUID finds a quote by UUID with its items preloaded
func (r *QuoteRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	db := r.getDB(ctx)

	var quote models.Quote
	err := db.Where("uuid = ?", id).Preload("Items").Last(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find quote by UUID: %w", err)
	}
	return &quote, nil
}

// ListByCreator retrieves quotes created by one actor, newest first
func (r *QuoteRepositoryImpl) ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*models.Quote, error) {
	db := r.getDB(ctx)

	var quotes []*models.Quote
	query := db.Where("created_by = ?", createdBy).Order("created_at DESC, id DESC").Preload("Items")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes by creator: %w", err)
	}
	return quotes, nil
}

// ListRecent retrieves the most recent quotes across all creators
func (r *QuoteRepositoryImpl) ListRecent(ctx context.Context, limit, offset int) ([]*models.Quote, error) {
	db := r.getDB(ctx)

	var quotes []*models.Quote
	query := db.Order("created_at DESC, id DESC").Preload("Items")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent quotes: %w", err)
	}
	return quotes, nil
}
