package businessflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"go.uber.org/zap"
)

// DefaultRateLockWait bounds how long an administrative writer queues behind
// a competitor before failing fast with a conflict
const DefaultRateLockWait = 3 * time.Second

// RateCatalogFlow defines operations on the effective-dated rate catalog
type RateCatalogFlow interface {
	// OpenRateVersion atomically closes the open version of the key (if
	// any) and inserts the new open one. Safe to retry on conflict.
	OpenRateVersion(ctx context.Context, req *dto.OpenRateVersionRequest) (*dto.OpenRateVersionResponse, error)
	// GetEffectiveRate returns the version whose interval covers the
	// requested date.
	GetEffectiveRate(ctx context.Context, req *dto.GetEffectiveRateRequest) (*dto.GetEffectiveRateResponse, error)
	// GetRateHistory lists the append-only version history of a key.
	GetRateHistory(ctx context.Context, req *dto.GetEffectiveRateRequest, limit, offset int) (*dto.RateHistoryResponse, error)
}

type RateCatalogFlowImpl struct {
	rateVersionRepo repository.RateVersionRepository
	auditLogRepo    repository.AuditLogRepository
	tx              repository.TxRunner
	locker          KeyLocker
	lockWait        time.Duration
	logger          *zap.Logger
}

// NewRateCatalogFlow creates a rate catalog flow. lockWait <= 0 falls back
// to DefaultRateLockWait.
func NewRateCatalogFlow(
	rateVersionRepo repository.RateVersionRepository,
	auditLogRepo repository.AuditLogRepository,
	tx repository.TxRunner,
	locker KeyLocker,
	lockWait time.Duration,
	logger *zap.Logger,
) RateCatalogFlow {
	if lockWait <= 0 {
		lockWait = DefaultRateLockWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateCatalogFlowImpl{
		rateVersionRepo: rateVersionRepo,
		auditLogRepo:    auditLogRepo,
		tx:              tx,
		locker:          locker,
		lockWait:        lockWait,
		logger:          logger,
	}
}

// OpenRateVersion serializes per pricing key: the keyed lock is held across
// the close of the previous version and the insert of the new one, and the
// open-row count is re-verified inside the transaction before commit so two
// racing writers can never both leave an open version behind.
func (f *RateCatalogFlowImpl) OpenRateVersion(ctx context.Context, req *dto.OpenRateVersionRequest) (*dto.OpenRateVersionResponse, error) {
	if strings.TrimSpace(req.Actor) == "" {
		return nil, NewBusinessError("RATE_ACTOR_REQUIRED", "Actor is required", ErrActorRequired)
	}
	if !req.RateAmount.IsPositive() {
		return nil, NewBusinessError("RATE_AMOUNT_INVALID", "Rate amount must be greater than zero", ErrInvalidRateAmount)
	}
	key, err := pricingKeyFromParts(req.LocationCode, req.OriginCode, req.DestinationCode, req.TransportMode)
	if err != nil {
		return nil, err
	}

	effectiveFrom := utils.Today()
	if req.EffectiveFrom != nil {
		effectiveFrom = utils.DateOnly(*req.EffectiveFrom)
	}

	release, err := f.locker.Acquire(ctx, key.String(), f.lockWait)
	if err != nil {
		rateConflictsTotal.Inc()
		f.logger.Warn("rate version open rejected, key is locked",
			zap.String("pricing_key", key.String()),
			zap.Error(err),
		)
		return nil, NewBusinessError("CONCURRENT_RATE_CONFLICT", "A competing writer holds this pricing key", ErrConcurrentRateConflict)
	}
	defer release()

	var newVersion *models.RateVersion
	var closedVersion *models.RateVersion

	err = f.tx.WithTx(ctx, func(txCtx context.Context) error {
		open, err := f.rateVersionRepo.OpenForUpdate(txCtx, key)
		if err != nil {
			return NewBusinessError("RATE_VERSION_LOCK_FAILED", "Failed to lock open rate version", err)
		}

		if open != nil {
			if effectiveFrom.Before(open.EffectiveFrom) {
				return NewBusinessError("RATE_EFFECTIVE_FROM_INVALID", "Effective date precedes the currently open version", ErrEffectiveFromBeforeOpen)
			}
			if err := f.rateVersionRepo.Close(txCtx, open.ID, effectiveFrom); err != nil {
				return NewBusinessError("RATE_VERSION_CLOSE_FAILED", "Failed to close open rate version", err)
			}
			end := effectiveFrom
			open.EffectiveTo = &end
			open.IsActive = false
			closedVersion = open
		}

		newVersion = &models.RateVersion{
			PricingKey:      key.String(),
			LocationCode:    key.LocationCode,
			OriginCode:      key.OriginCode,
			DestinationCode: key.DestinationCode,
			TransportMode:   string(key.Mode),
			RateAmount:      Quantize(req.RateAmount, utils.ScaleRate),
			EffectiveFrom:   effectiveFrom,
			IsActive:        true,
			CreatedBy:       req.Actor,
			CreatedAt:       utils.UTCNow(),
		}
		if err := f.rateVersionRepo.Save(txCtx, newVersion); err != nil {
			return NewBusinessError("RATE_VERSION_SAVE_FAILED", "Failed to save rate version", err)
		}

		// Re-verify exclusivity before commit; a writer that slipped past
		// the keyed lock (e.g. a second process with a local locker) shows
		// up here and rolls the whole unit back.
		openCount, err := f.rateVersionRepo.CountOpen(txCtx, key)
		if err != nil {
			return NewBusinessError("RATE_VERSION_VERIFY_FAILED", "Failed to verify open rate version count", err)
		}
		if openCount != 1 {
			return NewBusinessError("CONCURRENT_RATE_CONFLICT", "A competing writer left the pricing key inconsistent", ErrConcurrentRateConflict)
		}

		metadata := map[string]string{
			"pricing_key":    key.String(),
			"new_rate":       newVersion.RateAmount.String(),
			"effective_from": effectiveFrom.Format(time.DateOnly),
		}
		if closedVersion != nil {
			metadata["old_rate"] = closedVersion.RateAmount.String()
			metadata["closed_version_uuid"] = closedVersion.UUID.String()
		}
		return emitAudit(txCtx, f.auditLogRepo, f.logger, req.Actor, models.AuditActionRateVersionOpened, "rate_version", newVersion.UUID.String(), metadata)
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentRateConflict) {
			rateConflictsTotal.Inc()
		}
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("RATE_VERSION_OPEN_FAILED", "Failed to open rate version", err)
	}

	rateVersionsOpenedTotal.Inc()
	f.logger.Info("rate version opened",
		zap.String("pricing_key", key.String()),
		zap.String("uuid", newVersion.UUID.String()),
		zap.String("rate_amount", newVersion.RateAmount.String()),
		zap.String("actor", req.Actor),
	)

	resp := &dto.OpenRateVersionResponse{
		Message: "Rate version opened successfully",
		Version: ToRateVersionDTO(newVersion),
	}
	if closedVersion != nil {
		closed := ToRateVersionDTO(closedVersion)
		resp.ClosedVersion = &closed
	}
	return resp, nil
}

// GetEffectiveRate resolves the version covering req.AsOf (default today)
func (f *RateCatalogFlowImpl) GetEffectiveRate(ctx context.Context, req *dto.GetEffectiveRateRequest) (*dto.GetEffectiveRateResponse, error) {
	key, err := pricingKeyFromParts(req.LocationCode, req.OriginCode, req.DestinationCode, req.TransportMode)
	if err != nil {
		return nil, err
	}

	asOf := utils.Today()
	if req.AsOf != nil {
		asOf = utils.DateOnly(*req.AsOf)
	}

	version, err := f.rateVersionRepo.EffectiveAsOf(ctx, key, asOf)
	if err != nil {
		return nil, NewBusinessError("RATE_LOOKUP_FAILED", "Failed to look up effective rate", err)
	}
	if version == nil {
		return nil, NewBusinessError("RATE_NOT_FOUND", "No effective rate version covers the requested date", ErrRateNotFound)
	}

	return &dto.GetEffectiveRateResponse{
		Message: "Effective rate retrieved successfully",
		Version: ToRateVersionDTO(version),
	}, nil
}

// GetRateHistory lists the key's version history, newest first
func (f *RateCatalogFlowImpl) GetRateHistory(ctx context.Context, req *dto.GetEffectiveRateRequest, limit, offset int) (*dto.RateHistoryResponse, error) {
	key, err := pricingKeyFromParts(req.LocationCode, req.OriginCode, req.DestinationCode, req.TransportMode)
	if err != nil {
		return nil, err
	}

	versions, err := f.rateVersionRepo.History(ctx, key, limit, offset)
	if err != nil {
		return nil, NewBusinessError("RATE_HISTORY_FAILED", "Failed to list rate history", err)
	}

	items := make([]dto.RateVersionDTO, 0, len(versions))
	for _, version := range versions {
		items = append(items, ToRateVersionDTO(version))
	}
	return &dto.RateHistoryResponse{
		Message: "Rate history retrieved successfully",
		Items:   items,
	}, nil
}
