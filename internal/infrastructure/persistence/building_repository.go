package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// GormBuildingRepository implements BuildingRepository using GORM
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewGormBuildingRepository creates a new GormBuildingRepository
func NewGormBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

// FindByID finds a building by its ID
func (r *GormBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*realty.Building, error) {
	var building realty.Building
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&building, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &building, nil
}

// FindByCode finds a building by its code
func (r *GormBuildingRepository) FindByCode(ctx context.Context, code string) (*realty.Building, error) {
	var building realty.Building
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&building).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &building, nil
}

// List returns a page of buildings matching the filter
func (r *GormBuildingRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*realty.Building], error) {
	db := dbFromContext(ctx, r.db)

	countQuery := db.WithContext(ctx).Model(&realty.Building{})
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		countQuery = countQuery.Where("code ILIKE ? OR name ILIKE ? OR project_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*realty.Building]{}, err
	}

	query := db.WithContext(ctx).Model(&realty.Building{})
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR project_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("code ASC")

	var buildings []*realty.Building
	if err := query.Find(&buildings).Error; err != nil {
		return shared.Paginated[*realty.Building]{}, err
	}

	return shared.NewPaginated(buildings, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a building
func (r *GormBuildingRepository) Save(ctx context.Context, building *realty.Building) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(building).Error
}

// Delete deletes a building
func (r *GormBuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&realty.Building{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBuildingRepository implements BuildingRepository
var _ realty.BuildingRepository = (*GormBuildingRepository)(nil)
