package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/catalog"
)

// QuantityFor derives the on-hand quantity for a listing
// An available unit counts as one; an available store counts as its floor
// area so square meters can be sold off it; everything else is out of stock
func QuantityFor(state catalog.ListingState, kind catalog.ListingKind, area decimal.Decimal) decimal.Decimal {
	if state != catalog.ListingStateAvailable {
		return decimal.Zero
	}
	if kind == catalog.ListingKindStore && area.IsPositive() {
		return area
	}
	return decimal.NewFromInt(1)
}

// Ledger abstracts the external stock engine holding on-hand quantities
// SetQuantity replaces the full quantity at the location, it never adds
type Ledger interface {
	SetQuantity(ctx context.Context, listingID, locationID uuid.UUID, qty decimal.Decimal) error
	ReadQuantity(ctx context.Context, listingID, locationID uuid.UUID) (decimal.Decimal, error)
}
