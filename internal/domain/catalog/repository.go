package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/shared"
)

// ListingRepository defines persistence operations for listings
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) (*Listing, error)
	// FindAllByPropertyID returns every mirror referencing the property,
	// oldest first; more than one means the pair needs reconciliation
	FindAllByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*Listing, error)
	FindByCode(ctx context.Context, buildingID uuid.UUID, code string) (*Listing, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Listing], error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
}
