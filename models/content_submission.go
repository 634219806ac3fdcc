package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/collab-market/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionStatus represents the review state of submitted content
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusApproved  SubmissionStatus = "approved"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
)

// Valid checks if the status is valid
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SubmissionStatus
func (s *SubmissionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = SubmissionStatus(v)
	case []byte:
		*s = SubmissionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SubmissionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SubmissionStatus
func (s SubmissionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SubmissionStatus: %s", s)
	}
	return string(s), nil
}

// ContentSubmission is a piece of content a creator delivers for a campaign
type ContentSubmission struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_content_submissions_uuid" json:"uuid"`
	CampaignID    uint             `gorm:"not null;index:idx_content_submissions_campaign_id" json:"campaign_id"`
	CreatorID     uint             `gorm:"not null;index:idx_content_submissions_creator_id" json:"creator_id"`
	InvitationID  uint             `gorm:"not null" json:"invitation_id"`
	ContentURL    string           `gorm:"size:2048;not null" json:"content_url"`
	Caption       *string          `gorm:"type:text" json:"caption,omitempty"`
	Status        SubmissionStatus `gorm:"size:16;not null;default:'submitted';index:idx_content_submissions_status" json:"status"`
	ReviewComment *string          `gorm:"type:text" json:"review_comment,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     *time.Time       `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Creator  *Creator  `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
}

// TableName returns the table name for the model
func (ContentSubmission) TableName() string {
	return "content_submissions"
}

// BeforeCreate is called before creating a new record
func (s *ContentSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SubmissionStatusSubmitted
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CanTransitionTo checks if the submission can move to the given status
func (s *ContentSubmission) CanTransitionTo(newStatus SubmissionStatus) bool {
	return s.Status == SubmissionStatusSubmitted &&
		(newStatus == SubmissionStatusApproved || newStatus == SubmissionStatusRejected)
}

// ContentSubmissionFilter represents filter criteria for submissions
type ContentSubmissionFilter struct {
	ID           *uint             `json:"id,omitempty"`
	UUID         *uuid.UUID        `json:"uuid,omitempty"`
	CampaignID   *uint             `json:"campaign_id,omitempty"`
	CreatorID    *uint             `json:"creator_id,omitempty"`
	InvitationID *uint             `json:"invitation_id,omitempty"`
	Status       *SubmissionStatus `json:"status,omitempty"`
}
