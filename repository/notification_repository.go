package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// NotificationRepositoryImpl implements NotificationRepository interface
type NotificationRepositoryImpl struct {
	*BaseRepository[models.Notification, models.NotificationFilter]
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Notification, models.NotificationFilter](db),
	}
}

// ByUUID retrieves a notification by UUID
func (r *NotificationRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Notification, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.NotificationFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListUnpublished returns outbox rows not yet relayed, oldest first
func (r *NotificationRepositoryImpl) ListUnpublished(ctx context.Context, limit int) ([]*models.Notification, error) {
	return r.ByFilter(ctx, models.NotificationFilter{Unpublished: utils.ToPtr(true)}, "id ASC", limit, 0)
}

// MarkPublished stamps relayed outbox rows
func (r *NotificationRepositoryImpl) MarkPublished(ctx context.Context, ids []uint, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.getDB(ctx).Model(&models.Notification{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", publishedAt).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications published: %w", err)
	}
	return nil
}

// MarkRead flags a notification as read by its recipient
func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id uint) error {
	err := r.getDB(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

func (r *NotificationRepositoryImpl) applyFilter(query *gorm.DB, filter models.NotificationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.RecipientType != nil {
		query = query.Where("recipient_type = ?", *filter.RecipientType)
	}
	if filter.RecipientID != nil {
		query = query.Where("recipient_id = ?", *filter.RecipientID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.IsRead != nil {
		query = query.Where("is_read = ?", *filter.IsRead)
	}
	if filter.Unpublished != nil {
		if *filter.Unpublished {
			query = query.Where("published_at IS NULL")
		} else {
			query = query.Where("published_at IS NOT NULL")
		}
	}
	return query
}

// ByFilter retrieves notifications based on filter criteria
func (r *NotificationRepositoryImpl) ByFilter(ctx context.Context, filter models.NotificationFilter, orderBy string, limit, offset int) ([]*models.Notification, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Notification{}), filter)

	var rows []*models.Notification
	if err := paginate(query, orderBy, limit, offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of notifications matching the filter
func (r *NotificationRepositoryImpl) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Notification{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any notification matching the filter exists
func (r *NotificationRepositoryImpl) Exists(ctx context.Context, filter models.NotificationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
