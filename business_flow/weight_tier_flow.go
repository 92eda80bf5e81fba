package businessflow

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WeightTierFlow defines operations on the weight bands of a rate version
type WeightTierFlow interface {
	// CreateTier adds a band after checking its bounds and that it does
	// not overlap any active sibling of the same version.
	CreateTier(ctx context.Context, req *dto.CreateWeightTierRequest) (*dto.CreateWeightTierResponse, error)
	// ResolveTier picks the band covering a chargeable weight, scanning
	// active bands by ascending minimum and taking the first match.
	ResolveTier(ctx context.Context, req *dto.ResolveTierRequest) (*dto.ResolveTierResponse, error)
	// DeactivateTier soft-disables a band so later quotes skip it.
	DeactivateTier(ctx context.Context, req *dto.DeactivateWeightTierRequest) (*dto.DeactivateWeightTierResponse, error)
}

type WeightTierFlowImpl struct {
	weightTierRepo  repository.WeightTierRepository
	rateVersionRepo repository.RateVersionRepository
	auditLogRepo    repository.AuditLogRepository
	tx              repository.TxRunner
	locker          KeyLocker
	lockWait        time.Duration
	logger          *zap.Logger
}

func NewWeightTierFlow(
	weightTierRepo repository.WeightTierRepository,
	rateVersionRepo repository.RateVersionRepository,
	auditLogRepo repository.AuditLogRepository,
	tx repository.TxRunner,
	locker KeyLocker,
	lockWait time.Duration,
	logger *zap.Logger,
) WeightTierFlow {
	if lockWait <= 0 {
		lockWait = DefaultRateLockWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightTierFlowImpl{
		weightTierRepo:  weightTierRepo,
		rateVersionRepo: rateVersionRepo,
		auditLogRepo:    auditLogRepo,
		tx:              tx,
		locker:          locker,
		lockWait:        lockWait,
		logger:          logger,
	}
}

func (f *WeightTierFlowImpl) versionByUUID(ctx context.Context, raw string) (*models.RateVersion, error) {
	versionUUID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, NewBusinessError("RATE_VERSION_NOT_FOUND", "Invalid rate version identifier", ErrRateVersionNotFound)
	}
	version, err := f.rateVersionRepo.ByUUID(ctx, versionUUID)
	if err != nil {
		return nil, NewBusinessError("RATE_VERSION_LOOKUP_FAILED", "Failed to load rate version", err)
	}
	if version == nil {
		return nil, NewBusinessError("RATE_VERSION_NOT_FOUND", "Rate version not found", ErrRateVersionNotFound)
	}
	return version, nil
}

// CreateTier validates the band against its active siblings inside the
// version's keyed lock, so concurrent tier writers for the same pricing key
// cannot both pass the overlap scan.
func (f *WeightTierFlowImpl) CreateTier(ctx context.Context, req *dto.CreateWeightTierRequest) (*dto.CreateWeightTierResponse, error) {
	if strings.TrimSpace(req.Actor) == "" {
		return nil, NewBusinessError("TIER_ACTOR_REQUIRED", "Actor is required", ErrActorRequired)
	}
	if !req.RateAmount.IsPositive() {
		return nil, NewBusinessError("TIER_RATE_INVALID", "Tier rate must be greater than zero", ErrInvalidRateAmount)
	}

	version, err := f.versionByUUID(ctx, req.RateVersionUUID)
	if err != nil {
		return nil, err
	}

	tier := &models.WeightTier{
		RateVersionID: version.ID,
		MinWeightKg:   Quantize(req.MinWeightKg, utils.ScaleWeight),
		RateAmount:    Quantize(req.RateAmount, utils.ScaleRate),
		IsActive:      true,
		CreatedBy:     req.Actor,
		CreatedAt:     utils.UTCNow(),
	}
	if req.MaxWeightKg != nil {
		tier.MaxWeightKg = decimal.NullDecimal{Decimal: Quantize(*req.MaxWeightKg, utils.ScaleWeight), Valid: true}
	}
	if !tier.ValidateBounds() {
		weightTiersRejectedTotal.Inc()
		return nil, NewBusinessError("TIER_BOUNDS_INVALID", "Tier minimum must be non-negative and not exceed the maximum", ErrTierBoundsInvalid)
	}

	release, err := f.locker.Acquire(ctx, version.PricingKey, f.lockWait)
	if err != nil {
		rateConflictsTotal.Inc()
		return nil, NewBusinessError("CONCURRENT_RATE_CONFLICT", "A competing writer holds this pricing key", ErrConcurrentRateConflict)
	}
	defer release()

	err = f.tx.WithTx(ctx, func(txCtx context.Context) error {
		siblings, err := f.weightTierRepo.ActiveByRateVersion(txCtx, version.ID)
		if err != nil {
			return NewBusinessError("TIER_LOOKUP_FAILED", "Failed to load sibling tiers", err)
		}
		for _, sibling := range siblings {
			if tier.Overlaps(sibling) {
				weightTiersRejectedTotal.Inc()
				return NewBusinessError("TIER_OVERLAP", "Tier interval overlaps an existing active tier", ErrTierOverlap)
			}
		}
		if err := f.weightTierRepo.Save(txCtx, tier); err != nil {
			return NewBusinessError("TIER_SAVE_FAILED", "Failed to save weight tier", err)
		}

		metadata := map[string]string{
			"rate_version_uuid": version.UUID.String(),
			"pricing_key":       version.PricingKey,
			"min_weight_kg":     tier.MinWeightKg.String(),
			"rate_amount":       tier.RateAmount.String(),
		}
		if tier.MaxWeightKg.Valid {
			metadata["max_weight_kg"] = tier.MaxWeightKg.Decimal.String()
		}
		return emitAudit(txCtx, f.auditLogRepo, f.logger, req.Actor, models.AuditActionWeightTierCreated, "weight_tier", version.UUID.String(), metadata)
	})
	if err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("TIER_CREATE_FAILED", "Failed to create weight tier", err)
	}

	weightTiersCreatedTotal.Inc()
	f.logger.Info("weight tier created",
		zap.String("pricing_key", version.PricingKey),
		zap.Uint("tier_id", tier.ID),
		zap.String("min_weight_kg", tier.MinWeightKg.String()),
	)

	return &dto.CreateWeightTierResponse{
		Message: "Weight tier created successfully",
		Tier:    ToWeightTierDTO(tier),
	}, nil
}

func (f *WeightTierFlowImpl) ResolveTier(ctx context.Context, req *dto.ResolveTierRequest) (*dto.ResolveTierResponse, error) {
	version, err := f.versionByUUID(ctx, req.RateVersionUUID)
	if err != nil {
		return nil, err
	}

	tiers, err := f.weightTierRepo.ActiveByRateVersion(ctx, version.ID)
	if err != nil {
		return nil, NewBusinessError("TIER_LOOKUP_FAILED", "Failed to load weight tiers", err)
	}
	tier := matchTier(tiers, req.ChargeableWeightKg)
	if tier == nil {
		return nil, NewBusinessError("TIER_NOT_FOUND", "No weight tier matches the chargeable weight", ErrTierNotFound)
	}

	return &dto.ResolveTierResponse{
		Message: "Weight tier resolved successfully",
		Tier:    ToWeightTierDTO(tier),
	}, nil
}

func (f *WeightTierFlowImpl) DeactivateTier(ctx context.Context, req *dto.DeactivateWeightTierRequest) (*dto.DeactivateWeightTierResponse, error) {
	if strings.TrimSpace(req.Actor) == "" {
		return nil, NewBusinessError("TIER_ACTOR_REQUIRED", "Actor is required", ErrActorRequired)
	}

	tier, err := f.weightTierRepo.ByID(ctx, req.TierID)
	if err != nil {
		return nil, NewBusinessError("TIER_LOOKUP_FAILED", "Failed to load weight tier", err)
	}
	if tier == nil {
		return nil, NewBusinessError("TIER_NOT_FOUND", "Weight tier not found", ErrTierNotFound)
	}

	err = f.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := f.weightTierRepo.Deactivate(txCtx, tier.ID); err != nil {
			return NewBusinessError("TIER_DEACTIVATE_FAILED", "Failed to deactivate weight tier", err)
		}
		metadata := map[string]string{
			"min_weight_kg": tier.MinWeightKg.String(),
			"rate_amount":   tier.RateAmount.String(),
		}
		return emitAudit(txCtx, f.auditLogRepo, f.logger, req.Actor, models.AuditActionWeightTierDeactivated, "weight_tier", strconv.FormatUint(uint64(tier.ID), 10), metadata)
	})
	if err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("TIER_DEACTIVATE_FAILED", "Failed to deactivate weight tier", err)
	}

	f.logger.Info("weight tier deactivated",
		zap.Uint("tier_id", tier.ID),
		zap.String("actor", req.Actor),
	)
	return &dto.DeactivateWeightTierResponse{
		Message: "Weight tier deactivated successfully",
	}, nil
}

// matchTier walks tiers already ordered by ascending minimum and returns the
// first band containing weightKg, or nil when none does
func matchTier(tiers []*models.WeightTier, weightKg decimal.Decimal) *models.WeightTier {
	for _, tier := range tiers {
		if tier.Matches(weightKg) {
			return tier
		}
	}
	return nil
}
