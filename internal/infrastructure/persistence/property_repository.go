package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*realty.Property, error) {
	var property realty.Property
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// FindByCode finds a property by its unit code within a building
func (r *GormPropertyRepository) FindByCode(ctx context.Context, buildingID uuid.UUID, code string) (*realty.Property, error) {
	var property realty.Property
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("building_id = ? AND code = ?", buildingID, code).
		First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// FindByBuilding finds all active properties in a building
func (r *GormPropertyRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*realty.Property, error) {
	var properties []*realty.Property
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("building_id = ? AND active = ?", buildingID, true).
		Order("floor ASC, code ASC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// NextSequence returns the next per-floor unit sequence for code generation
func (r *GormPropertyRepository) NextSequence(ctx context.Context, buildingID uuid.UUID, floor int) (int, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&realty.Property{}).
		Where("building_id = ? AND floor = ?", buildingID, floor).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// FindLockedBefore returns properties whose reservation lock is older than the given time
func (r *GormPropertyRepository) FindLockedBefore(ctx context.Context, before time.Time) ([]*realty.Property, error) {
	var properties []*realty.Property
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("locked_by_order_id IS NOT NULL AND locked_at < ?", before).
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// List returns a page of properties matching the filter
func (r *GormPropertyRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*realty.Property], error) {
	db := dbFromContext(ctx, r.db)

	countQuery := r.applyFilterWithoutPagination(
		db.WithContext(ctx).Model(&realty.Property{}), filter)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*realty.Property]{}, err
	}

	var properties []*realty.Property
	query := r.applyFilter(db.WithContext(ctx).Model(&realty.Property{}), filter)
	if err := query.Find(&properties).Error; err != nil {
		return shared.Paginated[*realty.Property]{}, err
	}

	return shared.NewPaginated(properties, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *realty.Property) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(property).Error
}

// Delete deletes a property
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&realty.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Transaction executes fn within a database transaction
func (r *GormPropertyRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTransaction(ctx, r.db, fn)
}

// applyFilter applies filter options to the query
func (r *GormPropertyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPropertyRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "building_id":
			query = query.Where("building_id = ?", value)
		case "state":
			query = query.Where("state = ?", value)
		case "floor":
			query = query.Where("floor = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		case "locked":
			if locked, ok := value.(bool); ok {
				if locked {
					query = query.Where("locked_by_order_id IS NOT NULL")
				} else {
					query = query.Where("locked_by_order_id IS NULL")
				}
			}
		}
	}

	return query
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ realty.PropertyRepository = (*GormPropertyRepository)(nil)
