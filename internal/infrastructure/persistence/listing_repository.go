package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/shared"
)

// GormListingRepository implements ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Listing, error) {
	var listing catalog.Listing
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindByPropertyID finds the mirror listing for a property
// When more than one exists the oldest wins, matching FindAllByPropertyID
func (r *GormListingRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) (*catalog.Listing, error) {
	var listing catalog.Listing
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindAllByPropertyID returns every mirror referencing the property, oldest first
func (r *GormListingRepository) FindAllByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*catalog.Listing, error) {
	var listings []*catalog.Listing
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// FindByCode finds a listing by unit code within a building
func (r *GormListingRepository) FindByCode(ctx context.Context, buildingID uuid.UUID, code string) (*catalog.Listing, error) {
	var listing catalog.Listing
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("building_id = ? AND code = ?", buildingID, code).
		Order("created_at ASC").
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// List returns a page of listings matching the filter
func (r *GormListingRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*catalog.Listing], error) {
	db := dbFromContext(ctx, r.db)

	countQuery := r.applyFilterWithoutPagination(
		db.WithContext(ctx).Model(&catalog.Listing{}), filter)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*catalog.Listing]{}, err
	}

	var listings []*catalog.Listing
	query := r.applyFilter(db.WithContext(ctx).Model(&catalog.Listing{}), filter)
	if err := query.Find(&listings).Error; err != nil {
		return shared.Paginated[*catalog.Listing]{}, err
	}

	return shared.NewPaginated(listings, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a listing
func (r *GormListingRepository) Save(ctx context.Context, listing *catalog.Listing) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(listing).Error
}

// Delete deletes a listing
func (r *GormListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&catalog.Listing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormListingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "state":
			query = query.Where("state = ?", value)
		case "building_id":
			query = query.Where("building_id = ?", value)
		case "sellable":
			query = query.Where("sellable = ?", value)
		case "mirrored":
			if mirrored, ok := value.(bool); ok {
				if mirrored {
					query = query.Where("property_id IS NOT NULL")
				} else {
					query = query.Where("property_id IS NULL")
				}
			}
		}
	}

	return query
}

// Ensure GormListingRepository implements ListingRepository
var _ catalog.ListingRepository = (*GormListingRepository)(nil)
