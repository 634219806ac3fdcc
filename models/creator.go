package models

import (
	"slices"
	"time"

	"github.com/amirphl/collab-market/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Creator is a content creator listed in the directory
type Creator struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_creators_uuid" json:"uuid"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Email       string         `gorm:"size:255;not null;uniqueIndex:uk_creators_email" json:"email"`
	AvatarURL   *string        `gorm:"size:1024" json:"avatar_url,omitempty"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Category    string         `gorm:"size:100;index:idx_creators_category" json:"category"`
	Subscribers int64          `gorm:"not null;default:0" json:"subscribers"`
	AvgViews    int64          `gorm:"not null;default:0" json:"avg_views"`
	Platforms   pq.StringArray `gorm:"type:text[]" json:"platforms"`
	Location    string         `gorm:"size:255" json:"location"`
	IsActive    *bool          `gorm:"default:true;index:idx_creators_is_active" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Creator) TableName() string {
	return "creators"
}

// BeforeCreate is called before creating a new record
func (c *Creator) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.IsActive == nil {
		c.IsActive = utils.ToPtr(true)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// Active reports whether the creator can be matched and invited
func (c *Creator) Active() bool {
	return utils.IsTrue(c.IsActive)
}

// ToProfile converts the directory record into a matching candidate
func (c *Creator) ToProfile() CreatorProfile {
	p := CreatorProfile{
		ID:          c.UUID.String(),
		Name:        c.Name,
		Category:    c.Category,
		Subscribers: c.Subscribers,
		AvgViews:    c.AvgViews,
		Platforms:   slices.Clone([]string(c.Platforms)),
		Location:    c.Location,
	}
	if c.AvatarURL != nil {
		p.AvatarURL = *c.AvatarURL
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	return p
}

// CreatorProfile is the read-only candidate the match engine scores.
// Display attributes are passed through untouched.
type CreatorProfile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Subscribers int64    `json:"subscribers"`
	AvgViews    int64    `json:"avg_views"`
	Platforms   []string `json:"platforms"`
	Location    string   `json:"location"`
}

// HasPlatform reports whether the creator publishes on the platform
func (p CreatorProfile) HasPlatform(platform string) bool {
	return slices.Contains(p.Platforms, platform)
}

// HasAllPlatforms reports whether every required platform is present
func (p CreatorProfile) HasAllPlatforms(required []string) bool {
	for _, r := range required {
		if !p.HasPlatform(r) {
			return false
		}
	}
	return true
}

// CreatorFilter represents filter criteria for creators
type CreatorFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Category *string    `json:"category,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
