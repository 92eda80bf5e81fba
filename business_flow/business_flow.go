// Package businessflow contains the business logic for the freight rate catalog and quote engine.
package businessflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"go.uber.org/zap"
)

// pricingKeyFromParts assembles and validates a PricingKey from the raw
// request fields shared by the catalog DTOs
func pricingKeyFromParts(locationCode, originCode, destinationCode, transportMode string) (models.PricingKey, error) {
	var key models.PricingKey
	if strings.TrimSpace(locationCode) != "" {
		key = models.LocationPricingKey(locationCode)
	} else {
		key = models.RoutePricingKey(originCode, destinationCode, models.TransportMode(strings.ToUpper(strings.TrimSpace(transportMode))))
	}
	if err := key.Validate(); err != nil {
		return models.PricingKey{}, NewBusinessError("PRICING_KEY_INVALID", "Invalid pricing key", err)
	}
	return key, nil
}

// ToRateVersionDTO converts a rate version model to its DTO form
func ToRateVersionDTO(version *models.RateVersion) dto.RateVersionDTO {
	return dto.RateVersionDTO{
		UUID:          version.UUID.String(),
		PricingKey:    version.PricingKey,
		RateAmount:    version.RateAmount,
		EffectiveFrom: version.EffectiveFrom,
		EffectiveTo:   version.EffectiveTo,
		IsActive:      version.IsActive,
		CreatedBy:     version.CreatedBy,
		CreatedAt:     version.CreatedAt,
	}
}

// ToWeightTierDTO converts a weight tier model to its DTO form
func ToWeightTierDTO(tier *models.WeightTier) dto.WeightTierDTO {
	return dto.WeightTierDTO{
		ID:            tier.ID,
		RateVersionID: tier.RateVersionID,
		MinWeightKg:   tier.MinWeightKg,
		MaxWeightKg:   tier.MaxWeightKg,
		RateAmount:    tier.RateAmount,
		IsActive:      tier.IsActive,
		CreatedAt:     tier.CreatedAt,
	}
}

// ToLocationDTO converts a location model to its DTO form
func ToLocationDTO(location *models.Location) dto.LocationDTO {
	return dto.LocationDTO{
		ID:           location.ID,
		Code:         location.Code,
		Name:         location.Name,
		Country:      location.Country,
		LocationType: location.LocationType,
		IsActive:     location.IsActive,
	}
}

// emitAudit records one administrative action. Metadata values arrive as
// strings (decimals already rendered) so the JSON payload stays exact.
// Audit persistence failures inside a transaction abort the whole action;
// an administrative write without its audit trail must not commit.
func emitAudit(ctx context.Context, repo repository.AuditLogRepository, logger *zap.Logger, actor, action, entityName, entityID string, metadata map[string]string) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return NewBusinessError("AUDIT_METADATA_INVALID", "Failed to encode audit metadata", err)
	}

	entry := &models.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		Metadata:   payload,
		CreatedAt:  utils.UTCNow(),
	}
	if err := repo.Save(ctx, entry); err != nil {
		return NewBusinessError("AUDIT_SAVE_FAILED", "Failed to record audit event", err)
	}

	logger.Info("audit event recorded",
		zap.String("actor", actor),
		zap.String("action", action),
		zap.String("entity", entityName),
		zap.String("entity_id", entityID),
	)
	return nil
}
