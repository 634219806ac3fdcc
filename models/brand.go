package models

import (
	"time"

	"github.com/amirphl/collab-market/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand is an advertiser that owns campaigns
type Brand struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_brands_uuid" json:"uuid"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Email     string     `gorm:"size:255;not null;uniqueIndex:uk_brands_email" json:"email"`
	IsActive  *bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Brand) TableName() string {
	return "brands"
}

// BeforeCreate is called before creating a new record
func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.IsActive == nil {
		b.IsActive = utils.ToPtr(true)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// Active reports whether the brand account is usable
func (b *Brand) Active() bool {
	return utils.IsTrue(b.IsActive)
}

// BrandFilter represents filter criteria for brands
type BrandFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Email    *string    `json:"email,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
