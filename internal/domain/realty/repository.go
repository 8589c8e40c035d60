package realty

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/shared"
)

// PropertyRepository defines persistence operations for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByCode(ctx context.Context, buildingID uuid.UUID, code string) (*Property, error)
	FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*Property, error)
	// NextSequence returns the next per-floor unit sequence for code generation
	NextSequence(ctx context.Context, buildingID uuid.UUID, floor int) (int, error)
	// FindLockedBefore returns properties whose lock is older than the given time
	FindLockedBefore(ctx context.Context, before time.Time) ([]*Property, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Property], error)
	Save(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Transaction runs fn inside a database transaction; repositories obtained
	// through the callback context share that transaction
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BuildingRepository defines persistence operations for buildings
type BuildingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Building, error)
	FindByCode(ctx context.Context, code string) (*Building, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Building], error)
	Save(ctx context.Context, building *Building) error
	Delete(ctx context.Context, id uuid.UUID) error
}
