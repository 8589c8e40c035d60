package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/shared"
)

// ReservationOrderRepository defines persistence operations for reservation orders
type ReservationOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*ReservationOrder, error)
	// FindActiveByProperty returns non-cancelled orders carrying a line for the property
	FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) ([]*ReservationOrder, error)
	// GenerateOrderNumber produces the next sequential order number
	GenerateOrderNumber(ctx context.Context) (string, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ReservationOrder], error)
	Save(ctx context.Context, order *ReservationOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
