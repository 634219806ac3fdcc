package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// ContentSubmissionRepositoryImpl implements ContentSubmissionRepository interface
type ContentSubmissionRepositoryImpl struct {
	*BaseRepository[models.ContentSubmission, models.ContentSubmissionFilter]
}

// NewContentSubmissionRepository creates a new content submission repository
func NewContentSubmissionRepository(db *gorm.DB) ContentSubmissionRepository {
	return &ContentSubmissionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ContentSubmission, models.ContentSubmissionFilter](db),
	}
}

// ByUUID retrieves a submission by UUID
func (r *ContentSubmissionRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.ContentSubmission, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.ContentSubmissionFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateReview records the brand's decision on a submitted item
func (r *ContentSubmissionRepositoryImpl) UpdateReview(ctx context.Context, id uint, status models.SubmissionStatus, comment *string, reviewedAt time.Time) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	res := db.Model(&models.ContentSubmission{}).
		Where("id = ? AND status = ?", id, models.SubmissionStatusSubmitted).
		Updates(map[string]any{
			"status":         status,
			"review_comment": comment,
			"reviewed_at":    reviewedAt,
			"updated_at":     reviewedAt,
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to review submission %d: %w", id, res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = ErrVersionConflict
		return err
	}
	return nil
}

func (r *ContentSubmissionRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContentSubmissionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.InvitationID != nil {
		query = query.Where("invitation_id = ?", *filter.InvitationID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves submissions based on filter criteria
func (r *ContentSubmissionRepositoryImpl) ByFilter(ctx context.Context, filter models.ContentSubmissionFilter, orderBy string, limit, offset int) ([]*models.ContentSubmission, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.ContentSubmission{}), filter)

	var rows []*models.ContentSubmission
	if err := paginate(query, orderBy, limit, offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of submissions matching the filter
func (r *ContentSubmissionRepositoryImpl) Count(ctx context.Context, filter models.ContentSubmissionFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.ContentSubmission{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any submission matching the filter exists
func (r *ContentSubmissionRepositoryImpl) Exists(ctx context.Context, filter models.ContentSubmissionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
