package repository

import (
	"context"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// CreatorRepositoryImpl implements CreatorRepository interface
type CreatorRepositoryImpl struct {
	*BaseRepository[models.Creator, models.CreatorFilter]
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &CreatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Creator, models.CreatorFilter](db),
	}
}

// ByUUID retrieves a creator by UUID
func (r *CreatorRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Creator, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.CreatorFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListActive returns the whole active directory in stable id order.
// Ranking relies on this order for ties.
func (r *CreatorRepositoryImpl) ListActive(ctx context.Context) ([]*models.Creator, error) {
	return r.ByFilter(ctx, models.CreatorFilter{IsActive: utils.ToPtr(true)}, "id ASC", 0, 0)
}

// ByIDs retrieves creators by primary key
func (r *CreatorRepositoryImpl) ByIDs(ctx context.Context, ids []uint) ([]*models.Creator, error) {
	if len(ids) == 0 {
		return []*models.Creator{}, nil
	}
	var rows []*models.Creator
	if err := r.getDB(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CreatorRepositoryImpl) applyFilter(query *gorm.DB, filter models.CreatorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Category != nil {
		query = query.Where("LOWER(category) = LOWER(?)", *filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves creators based on filter criteria
func (r *CreatorRepositoryImpl) ByFilter(ctx context.Context, filter models.CreatorFilter, orderBy string, limit, offset int) ([]*models.Creator, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Creator{}), filter)

	var rows []*models.Creator
	if err := paginate(query, orderBy, limit, offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of creators matching the filter
func (r *CreatorRepositoryImpl) Count(ctx context.Context, filter models.CreatorFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.getDB(ctx).Model(&models.Creator{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any creator matching the filter exists
func (r *CreatorRepositoryImpl) Exists(ctx context.Context, filter models.CreatorFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
