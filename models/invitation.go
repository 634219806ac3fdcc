package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/collab-market/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationStatus represents the status of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRejected InvitationStatus = "rejected"
)

// String returns the string representation of the status
func (s InvitationStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusRejected:
		return true
	default:
		return false
	}
}

// Outcome maps a response status onto the statistics event it records
func (s InvitationStatus) Outcome() (InvitationOutcome, bool) {
	switch s {
	case InvitationStatusAccepted:
		return InvitationOutcomeAccepted, true
	case InvitationStatusRejected:
		return InvitationOutcomeRejected, true
	default:
		return "", false
	}
}

// Scan implements the sql.Scanner interface for InvitationStatus
func (s *InvitationStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = InvitationStatus(v)
	case []byte:
		*s = InvitationStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into InvitationStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for InvitationStatus
func (s InvitationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid InvitationStatus: %s", s)
	}
	return string(s), nil
}

// Invitation is a brand's offer to a creator to join a campaign
type Invitation struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_invitations_uuid" json:"uuid"`
	CampaignID   uint             `gorm:"not null;uniqueIndex:uk_invitations_campaign_creator,priority:1" json:"campaign_id"`
	CreatorID    uint             `gorm:"not null;uniqueIndex:uk_invitations_campaign_creator,priority:2;index:idx_invitations_creator_id" json:"creator_id"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	Compensation uint64           `gorm:"not null;default:0" json:"compensation"`
	Status       InvitationStatus `gorm:"size:16;not null;default:'pending';index:idx_invitations_status" json:"status"`
	RespondedAt  *time.Time       `json:"responded_at,omitempty"`
	CreatedAt    time.Time        `gorm:"index:idx_invitations_created_at" json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Creator  *Creator  `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
}

// TableName returns the table name for the model
func (Invitation) TableName() string {
	return "invitations"
}

// BeforeCreate is called before creating a new record
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == uuid.Nil {
		i.UUID = uuid.New()
	}
	if i.Status == "" {
		i.Status = InvitationStatusPending
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (i *Invitation) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	i.UpdatedAt = &now
	return nil
}

// CanTransitionTo checks if the invitation can move to the given status
func (i *Invitation) CanTransitionTo(newStatus InvitationStatus) bool {
	switch i.Status {
	case InvitationStatusPending:
		return newStatus == InvitationStatusAccepted || newStatus == InvitationStatusRejected
	default:
		return false
	}
}

// InvitationFilter represents filter criteria for invitations
type InvitationFilter struct {
	ID         *uint             `json:"id,omitempty"`
	UUID       *uuid.UUID        `json:"uuid,omitempty"`
	CampaignID *uint             `json:"campaign_id,omitempty"`
	CreatorID  *uint             `json:"creator_id,omitempty"`
	Status     *InvitationStatus `json:"status,omitempty"`
}
