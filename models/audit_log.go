package models

import (
	"encoding/json"
	"time"
)

// AuditLog records one administrative action against the catalog. The engine
// only emits these rows; retention and external shipping belong to the
// calling application.
type AuditLog struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Actor      string          `gorm:"size:120;not null;index:idx_audit_actor" json:"actor"`
	Action     string          `gorm:"size:80;not null;index:idx_audit_action" json:"action"`
	EntityName string          `gorm:"size:80;not null" json:"entity_name"`
	EntityID   string          `gorm:"size:64" json:"entity_id"`
	Metadata   json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionRateVersionOpened     = "rate_version_opened"
	AuditActionWeightTierCreated     = "weight_tier_created"
	AuditActionWeightTierDeactivated = "weight_tier_deactivated"
	AuditActionLocationCreated       = "location_created"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint      `json:"id,omitempty"`
	Actor         *string    `json:"actor,omitempty"`
	Action        *string    `json:"action,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
