package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/realty/backend/internal/domain/catalog"
)

func TestQuantityFor(t *testing.T) {
	area := decimal.NewFromInt(120)

	tests := []struct {
		name  string
		state catalog.ListingState
		kind  catalog.ListingKind
		area  decimal.Decimal
		want  decimal.Decimal
	}{
		{"available apartment", catalog.ListingStateAvailable, catalog.ListingKindApartment, area, decimal.NewFromInt(1)},
		{"available equipment", catalog.ListingStateAvailable, catalog.ListingKindEquipment, area, decimal.NewFromInt(1)},
		{"available store sells its area", catalog.ListingStateAvailable, catalog.ListingKindStore, area, area},
		{"available store without area", catalog.ListingStateAvailable, catalog.ListingKindStore, decimal.Zero, decimal.NewFromInt(1)},
		{"in progress apartment", catalog.ListingStateInProgress, catalog.ListingKindApartment, area, decimal.Zero},
		{"reserved apartment", catalog.ListingStateReserved, catalog.ListingKindApartment, area, decimal.Zero},
		{"sold store", catalog.ListingStateSold, catalog.ListingKindStore, area, decimal.Zero},
		{"blocked apartment", catalog.ListingStateBlocked, catalog.ListingKindApartment, area, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuantityFor(tt.state, tt.kind, tt.area)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}
