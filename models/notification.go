package models

import (
	"encoding/json"
	"time"

	"github.com/amirphl/collab-market/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType identifies the event a notification reports
type NotificationType string

const (
	NotificationTypeAllInvitationsRejected NotificationType = "ALL_INVITATIONS_REJECTED"
	NotificationTypeInvitationReceived     NotificationType = "INVITATION_RECEIVED"
	NotificationTypeInvitationAccepted     NotificationType = "INVITATION_ACCEPTED"
	NotificationTypeContentSubmitted       NotificationType = "CONTENT_SUBMITTED"
	NotificationTypeContentReviewed        NotificationType = "CONTENT_REVIEWED"
	NotificationTypeCampaignCompleted      NotificationType = "CAMPAIGN_COMPLETED"
)

// RecipientType tells which actor table RecipientID points at
type RecipientType string

const (
	RecipientTypeBrand   RecipientType = "brand"
	RecipientTypeCreator RecipientType = "creator"
)

// Notification is an outbox row: it is listed to its recipient and relayed
// to the event bus once, after which PublishedAt is set.
type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_notifications_uuid" json:"uuid"`
	Type          NotificationType `gorm:"size:64;not null;index:idx_notifications_type" json:"type"`
	RecipientType RecipientType    `gorm:"size:16;not null;index:idx_notifications_recipient,priority:1" json:"recipient_type"`
	RecipientID   uint             `gorm:"not null;index:idx_notifications_recipient,priority:2" json:"recipient_id"`
	CampaignID    *uint            `gorm:"index:idx_notifications_campaign_id" json:"campaign_id,omitempty"`
	Payload       json.RawMessage  `gorm:"type:jsonb" json:"payload,omitempty"`
	IsRead        bool             `gorm:"not null;default:false" json:"is_read"`
	PublishedAt   *time.Time       `gorm:"index:idx_notifications_published_at" json:"published_at,omitempty"`
	CreatedAt     time.Time        `gorm:"index:idx_notifications_created_at" json:"created_at"`
}

// TableName returns the table name for the model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate is called before creating a new record
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = utils.UTCNow()
	}
	return nil
}

// AllInvitationsRejectedPayload is emitted when the last pending invitation
// of a campaign is rejected and none were accepted.
type AllInvitationsRejectedPayload struct {
	Type          NotificationType     `json:"type"`
	CampaignID    string               `json:"campaignId"`
	RejectedCount int                  `json:"rejectedCount"`
	Stats         InvitationStatistics `json:"stats"`
}

// NewAllInvitationsRejectedPayload builds the payload from the campaign progress
func NewAllInvitationsRejectedPayload(campaignUUID uuid.UUID, progress CampaignProgress) AllInvitationsRejectedPayload {
	return AllInvitationsRejectedPayload{
		Type:          NotificationTypeAllInvitationsRejected,
		CampaignID:    campaignUUID.String(),
		RejectedCount: progress.Statistics.RejectedInvitations,
		Stats:         progress.Statistics,
	}
}

// NotificationFilter represents filter criteria for notifications
type NotificationFilter struct {
	ID            *uint             `json:"id,omitempty"`
	UUID          *uuid.UUID        `json:"uuid,omitempty"`
	Type          *NotificationType `json:"type,omitempty"`
	RecipientType *RecipientType    `json:"recipient_type,omitempty"`
	RecipientID   *uint             `json:"recipient_id,omitempty"`
	CampaignID    *uint             `json:"campaign_id,omitempty"`
	IsRead        *bool             `json:"is_read,omitempty"`
	Unpublished   *bool             `json:"unpublished,omitempty"`
}
