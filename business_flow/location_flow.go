package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// LocationFlow defines operations on catalog locations
type LocationFlow interface {
	CreateLocation(ctx context.Context, req *dto.CreateLocationRequest) (*dto.CreateLocationResponse, error)
	ListActiveLocations(ctx context.Context, locationType string) (*dto.ListLocationsResponse, error)
}

type LocationFlowImpl struct {
	locationRepo repository.LocationRepository
	auditLogRepo repository.AuditLogRepository
	tx           repository.TxRunner
	validator    *validator.Validate
	logger       *zap.Logger
}

func NewLocationFlow(
	locationRepo repository.LocationRepository,
	auditLogRepo repository.AuditLogRepository,
	tx repository.TxRunner,
	logger *zap.Logger,
) LocationFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationFlowImpl{
		locationRepo: locationRepo,
		auditLogRepo: auditLogRepo,
		tx:           tx,
		validator:    validator.New(),
		logger:       logger,
	}
}

func (f *LocationFlowImpl) CreateLocation(ctx context.Context, req *dto.CreateLocationRequest) (*dto.CreateLocationResponse, error) {
	if err := f.validator.Struct(req); err != nil {
		return nil, NewBusinessError("LOCATION_REQUEST_INVALID", "Invalid location request", err)
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	existing, err := f.locationRepo.ByCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("LOCATION_LOOKUP_FAILED", "Failed to look up location", err)
	}
	if existing != nil {
		return nil, NewBusinessError("LOCATION_ALREADY_EXISTS", "Location code already exists", ErrLocationAlreadyExists)
	}

	location := &models.Location{
		Code:         code,
		Name:         strings.TrimSpace(req.Name),
		Country:      strings.TrimSpace(req.Country),
		LocationType: req.LocationType,
		IsActive:     true,
		CreatedAt:    utils.UTCNow(),
	}

	err = f.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := f.locationRepo.Save(txCtx, location); err != nil {
			return NewBusinessError("LOCATION_SAVE_FAILED", "Failed to save location", err)
		}
		metadata := map[string]string{
			"code":          location.Code,
			"location_type": location.LocationType,
			"country":       location.Country,
		}
		return emitAudit(txCtx, f.auditLogRepo, f.logger, req.Actor, models.AuditActionLocationCreated, "location", location.Code, metadata)
	})
	if err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("LOCATION_CREATE_FAILED", "Failed to create location", err)
	}

	f.logger.Info("location created",
		zap.String("code", location.Code),
		zap.String("location_type", location.LocationType),
	)
	return &dto.CreateLocationResponse{
		Message:  "Location created successfully",
		Location: ToLocationDTO(location),
	}, nil
}

func (f *LocationFlowImpl) ListActiveLocations(ctx context.Context, locationType string) (*dto.ListLocationsResponse, error) {
	locations, err := f.locationRepo.ListActive(ctx, strings.ToUpper(strings.TrimSpace(locationType)))
	if err != nil {
		return nil, NewBusinessError("LOCATION_LIST_FAILED", "Failed to list locations", err)
	}

	items := make([]dto.LocationDTO, 0, len(locations))
	for _, location := range locations {
		items = append(items, ToLocationDTO(location))
	}
	return &dto.ListLocationsResponse{
		Message: "Locations retrieved successfully",
		Items:   items,
	}, nil
}
