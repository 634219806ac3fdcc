package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ByID retrieves a campaign by ID
func (r *CampaignRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.getDB(ctx).Preload("Brand").Last(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	campaigns, err := r.ByFilter(ctx, models.CampaignFilter{UUID: &parsedUUID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return nil, nil
	}
	return campaigns[0], nil
}

// UpdateProgress persists progress and the derived current stage
func (r *CampaignRepositoryImpl) UpdateProgress(ctx context.Context, campaign *models.Campaign, expectedVersion uint) error {
	return r.updateVersioned(ctx, campaign, expectedVersion, map[string]any{
		"progress":      campaign.Progress,
		"current_stage": campaign.Progress.CurrentStage(),
	})
}

// UpdateRequirements persists requirements
func (r *CampaignRepositoryImpl) UpdateRequirements(ctx context.Context, campaign *models.Campaign, expectedVersion uint) error {
	return r.updateVersioned(ctx, campaign, expectedVersion, map[string]any{
		"requirements": campaign.Requirements,
	})
}

func (r *CampaignRepositoryImpl) updateVersioned(ctx context.Context, campaign *models.Campaign, expectedVersion uint, fields map[string]any) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	now := utils.UTCNow()
	fields["version"] = gorm.Expr("version + 1")
	fields["updated_at"] = now

	res := db.Model(&models.Campaign{}).
		Where("id = ? AND version = ?", campaign.ID, expectedVersion).
		Updates(fields)
	if res.Error != nil {
		err = fmt.Errorf("failed to update campaign %d: %w", campaign.ID, res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = ErrVersionConflict
		return err
	}

	campaign.Version = expectedVersion + 1
	campaign.CurrentStage = campaign.Progress.CurrentStage()
	campaign.UpdatedAt = &now
	return nil
}

// SoftDelete archives a campaign
func (r *CampaignRepositoryImpl) SoftDelete(ctx context.Context, id uint) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	if err = db.Delete(&models.Campaign{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete campaign %d: %w", id, err)
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CampaignRepositoryImpl) applyFilter(query *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.CurrentStage != nil {
		query = query.Where("current_stage = ?", *filter.CurrentStage)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Campaign{}), filter)

	var campaigns []*models.Campaign
	if err := paginate(query, orderBy, limit, offset).Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Campaign{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any campaign matching the filter exists
func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
