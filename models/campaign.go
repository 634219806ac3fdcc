package models

import (
	"time"

	"github.com/amirphl/collab-market/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign represents a brand campaign in the database
type Campaign struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	BrandID      uint                 `gorm:"not null;index:idx_campaigns_brand_id" json:"brand_id"`
	Title        string               `gorm:"size:255;not null" json:"title"`
	Description  *string              `gorm:"type:text" json:"description,omitempty"`
	Budget       uint64               `gorm:"not null;default:0" json:"budget"`
	Requirements CampaignRequirements `gorm:"type:jsonb;not null" json:"requirements"`
	Progress     CampaignProgress     `gorm:"type:jsonb;not null" json:"progress"`
	CurrentStage StageName            `gorm:"size:32;not null;index:idx_campaigns_current_stage" json:"current_stage"`
	Version      uint                 `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time            `gorm:"index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt    *time.Time           `json:"updated_at,omitempty"`
	DeletedAt    gorm.DeletedAt       `gorm:"index:idx_campaigns_deleted_at" json:"-"`

	// Relations
	Brand *Brand `gorm:"foreignKey:BrandID;references:ID" json:"brand,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Progress.Stages[0].Name == "" {
		c.Progress = StartedCampaignProgress()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	c.CurrentStage = c.Progress.CurrentStage()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsOwnedBy reports whether the brand owns the campaign
func (c *Campaign) IsOwnedBy(brandID uint) bool {
	return c.BrandID == brandID
}

// RequirementsEditable reports whether requirements may still change.
// Once invitations are closed the ranked pool is frozen.
func (c *Campaign) RequirementsEditable() bool {
	current := c.Progress.CurrentStage()
	return current == StageCreation || current == StageInvitations
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	BrandID       *uint      `json:"brand_id,omitempty"`
	CurrentStage  *StageName `json:"current_stage,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
