// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirphl/collab-market/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// ErrVersionConflict is returned when an optimistic update matched no row
var ErrVersionConflict = errors.New("version conflict")

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// BrandRepository defines operations for brands
type BrandRepository interface {
	Repository[models.Brand, models.BrandFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Brand, error)
}

// CreatorRepository defines operations for the creator directory
type CreatorRepository interface {
	Repository[models.Creator, models.CreatorFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Creator, error)
	ListActive(ctx context.Context) ([]*models.Creator, error)
	ByIDs(ctx context.Context, ids []uint) ([]*models.Creator, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	// UpdateProgress writes progress when the stored version still equals
	// expectedVersion and bumps it; otherwise ErrVersionConflict.
	UpdateProgress(ctx context.Context, campaign *models.Campaign, expectedVersion uint) error
	UpdateRequirements(ctx context.Context, campaign *models.Campaign, expectedVersion uint) error
	SoftDelete(ctx context.Context, id uint) error
}

// InvitationRepository defines operations for invitations
type InvitationRepository interface {
	Repository[models.Invitation, models.InvitationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Invitation, error)
	ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.Invitation, error)
	InvitedCreatorIDs(ctx context.Context, campaignID uint) ([]uint, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.InvitationStatus, respondedAt time.Time) error
}

// ContentSubmissionRepository defines operations for content submissions
type ContentSubmissionRepository interface {
	Repository[models.ContentSubmission, models.ContentSubmissionFilter]
	ByUUID(ctx context.Context, uuid string) (*models.ContentSubmission, error)
	UpdateReview(ctx context.Context, id uint, status models.SubmissionStatus, comment *string, reviewedAt time.Time) error
}

// NotificationRepository defines operations for notifications
type NotificationRepository interface {
	Repository[models.Notification, models.NotificationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Notification, error)
	ListUnpublished(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkPublished(ctx context.Context, ids []uint, publishedAt time.Time) error
	MarkRead(ctx context.Context, id uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByActor(ctx context.Context, actorType models.RecipientType, actorID uint, limit, offset int) ([]*models.AuditLog, error)
}
