package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// InvitationRepositoryImpl implements InvitationRepository interface
type InvitationRepositoryImpl struct {
	*BaseRepository[models.Invitation, models.InvitationFilter]
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &InvitationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Invitation, models.InvitationFilter](db),
	}
}

// ByUUID retrieves an invitation by UUID
func (r *InvitationRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Invitation, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	return r.first(ctx, models.InvitationFilter{UUID: &parsed})
}

// ByCampaignAndCreator retrieves the invitation for a campaign/creator pair
func (r *InvitationRepositoryImpl) ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.Invitation, error) {
	return r.first(ctx, models.InvitationFilter{CampaignID: &campaignID, CreatorID: &creatorID})
}

func (r *InvitationRepositoryImpl) first(ctx context.Context, filter models.InvitationFilter) (*models.Invitation, error) {
	rows, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// InvitedCreatorIDs lists every creator already invited to the campaign
func (r *InvitationRepositoryImpl) InvitedCreatorIDs(ctx context.Context, campaignID uint) ([]uint, error) {
	var ids []uint
	err := r.getDB(ctx).Model(&models.Invitation{}).
		Where("campaign_id = ?", campaignID).
		Pluck("creator_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invited creators: %w", err)
	}
	return ids, nil
}

// UpdateStatus moves an invitation from one status to another. The from
// status is part of the predicate so a concurrent response loses cleanly.
func (r *InvitationRepositoryImpl) UpdateStatus(ctx context.Context, id uint, from, to models.InvitationStatus, respondedAt time.Time) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	res := db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":       to,
			"responded_at": respondedAt,
			"updated_at":   respondedAt,
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to update invitation %d: %w", id, res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = ErrVersionConflict
		return err
	}
	return nil
}

func (r *InvitationRepositoryImpl) applyFilter(query *gorm.DB, filter models.InvitationFilter) *gorm.DB {
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
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves invitations based on filter criteria
func (r *InvitationRepositoryImpl) ByFilter(ctx context.Context, filter models.InvitationFilter, orderBy string, limit, offset int) ([]*models.Invitation, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Invitation{}), filter)

	var rows []*models.Invitation
	if err := paginate(query, orderBy, limit, offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of invitations matching the filter
func (r *InvitationRepositoryImpl) Count(ctx context.Context, filter models.InvitationFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Invitation{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any invitation matching the filter exists
func (r *InvitationRepositoryImpl) Exists(ctx context.Context, filter models.InvitationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
