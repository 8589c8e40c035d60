package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/trade"
)

// GormReservationOrderRepository implements ReservationOrderRepository using GORM
type GormReservationOrderRepository struct {
	db *gorm.DB
}

// NewGormReservationOrderRepository creates a new GormReservationOrderRepository
func NewGormReservationOrderRepository(db *gorm.DB) *GormReservationOrderRepository {
	return &GormReservationOrderRepository{db: db}
}

// FindByID finds a reservation order by its ID
func (r *GormReservationOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ReservationOrder, error) {
	var order trade.ReservationOrder
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds a reservation order by its order number
func (r *GormReservationOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.ReservationOrder, error) {
	var order trade.ReservationOrder
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Lines").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindActiveByProperty returns non-cancelled orders carrying a line for the property
func (r *GormReservationOrderRepository) FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) ([]*trade.ReservationOrder, error) {
	var orders []*trade.ReservationOrder
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Lines").
		Joins("JOIN reservation_lines ON reservation_lines.order_id = reservation_orders.id").
		Where("reservation_lines.property_id = ? AND reservation_orders.status <> ?",
			propertyID, trade.OrderStatusCancelled).
		Order("reservation_orders.created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GenerateOrderNumber produces the next sequential order number
// Format: RES-YYYY-NNNNN (e.g., RES-2026-00001)
func (r *GormReservationOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	db := dbFromContext(ctx, r.db)
	year := time.Now().Year()
	prefix := fmt.Sprintf("RES-%d-", year)

	var lastOrder trade.ReservationOrder
	err := db.WithContext(ctx).
		Model(&trade.ReservationOrder{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// List returns a page of reservation orders matching the filter
func (r *GormReservationOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*trade.ReservationOrder], error) {
	db := dbFromContext(ctx, r.db)

	countQuery := r.applyFilterWithoutPagination(
		db.WithContext(ctx).Model(&trade.ReservationOrder{}), filter)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*trade.ReservationOrder]{}, err
	}

	var orders []*trade.ReservationOrder
	query := r.applyFilter(db.WithContext(ctx).Model(&trade.ReservationOrder{}), filter)
	if err := query.Preload("Lines").Find(&orders).Error; err != nil {
		return shared.Paginated[*trade.ReservationOrder]{}, err
	}

	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a reservation order and its lines
func (r *GormReservationOrderRepository) Save(ctx context.Context, order *trade.ReservationOrder) error {
	return runInTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := dbFromContext(ctx, r.db)

		if err := tx.WithContext(ctx).Omit("Lines").Save(order).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(order.Lines))
		for i, line := range order.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.WithContext(ctx).
				Where("order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
				Delete(&trade.ReservationLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.WithContext(ctx).
				Where("order_id = ?", order.ID).
				Delete(&trade.ReservationLine{}).Error; err != nil {
				return err
			}
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.WithContext(ctx).Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes a reservation order and its lines
func (r *GormReservationOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return runInTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := dbFromContext(ctx, r.db)

		if err := tx.WithContext(ctx).
			Where("order_id = ?", id).
			Delete(&trade.ReservationLine{}).Error; err != nil {
			return err
		}

		result := tx.WithContext(ctx).Delete(&trade.ReservationOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Transaction executes fn within a database transaction
func (r *GormReservationOrderRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTransaction(ctx, r.db, fn)
}

// applyFilter applies filter options to the query
func (r *GormReservationOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormReservationOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "customer_pending":
			if pending, ok := value.(bool); ok {
				if pending {
					query = query.Where("customer_id IS NULL")
				} else {
					query = query.Where("customer_id IS NOT NULL")
				}
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormReservationOrderRepository implements ReservationOrderRepository
var _ trade.ReservationOrderRepository = (*GormReservationOrderRepository)(nil)
