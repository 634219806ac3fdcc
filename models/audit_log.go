// Package models contains domain entities and business models for the marketplace
package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ActorType    *RecipientType  `gorm:"size:16;index:idx_audit_actor,priority:1" json:"actor_type,omitempty"`
	ActorID      *uint           `gorm:"index:idx_audit_actor,priority:2" json:"actor_id,omitempty"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionCampaignCreated             = "campaign_created"
	AuditActionCampaignCreationFailed      = "campaign_creation_failed"
	AuditActionCampaignRequirementsUpdated = "campaign_requirements_updated"
	AuditActionCampaignStageAdvanced       = "campaign_stage_advanced"
	AuditActionCampaignStageAdvanceFailed  = "campaign_stage_advance_failed"
	AuditActionCampaignDeleted             = "campaign_deleted"
	AuditActionInvitationSent              = "invitation_sent"
	AuditActionInvitationSendFailed        = "invitation_send_failed"
	AuditActionInvitationResponded         = "invitation_responded"
	AuditActionInvitationResponseFailed    = "invitation_response_failed"
	AuditActionContentSubmitted            = "content_submitted"
	AuditActionContentReviewed             = "content_reviewed"
	AuditActionStatisticsCorruption        = "statistics_corruption"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	ActorType     *RecipientType
	ActorID       *uint
	Action        *string
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

