package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realty/backend/internal/domain/realty"
)

func newTestApartmentProperty(t *testing.T) *realty.Property {
	t.Helper()
	p, err := realty.NewProperty(uuid.New(), "B0101", "B0101", 1,
		decimal.NewFromInt(85), decimal.NewFromInt(1200000))
	require.NoError(t, err)
	return p
}

func TestNewListing(t *testing.T) {
	t.Run("valid store listing", func(t *testing.T) {
		l, err := NewListing(ListingKindStore, "S01", "Corner store", decimal.NewFromInt(2500000))
		require.NoError(t, err)

		assert.Equal(t, ListingKindStore, l.Kind)
		assert.Equal(t, ListingStateAvailable, l.State)
		assert.True(t, l.Sellable)
		assert.False(t, l.HasProperty())
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewListing(ListingKind("garage"), "G01", "", decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestNewListingFromProperty(t *testing.T) {
	p := newTestApartmentProperty(t)

	l, err := NewListingFromProperty(p, "Les Jardins")
	require.NoError(t, err)

	assert.Equal(t, ListingKindApartment, l.Kind)
	assert.Equal(t, p.Code, l.Code)
	require.NotNil(t, l.PropertyID)
	assert.Equal(t, p.ID, *l.PropertyID)
	assert.Equal(t, "Les Jardins", l.ProjectName)
	assert.True(t, l.Area.Equal(p.Area))
	assert.Equal(t, ListingStateAvailable, l.State)
}

func TestSyncFromProperty(t *testing.T) {
	t.Run("mirrors fields and state", func(t *testing.T) {
		p := newTestApartmentProperty(t)
		l, err := NewListingFromProperty(p, "")
		require.NoError(t, err)
		l.ClearDomainEvents()

		require.NoError(t, p.StartReservation(uuid.New()))
		require.NoError(t, p.Update("B0101 deluxe", "renovated", 3, 2, decimal.NewFromInt(1300000)))

		l.SyncFromProperty(p)

		assert.Equal(t, "B0101 deluxe", l.Name)
		assert.Equal(t, 3, l.Rooms)
		assert.True(t, l.Price.Equal(decimal.NewFromInt(1300000)))
		assert.Equal(t, ListingStateInProgress, l.State)

		var stateEvents int
		for _, evt := range l.GetDomainEvents() {
			if _, ok := evt.(*ListingStateChangedEvent); ok {
				stateEvents++
			}
		}
		assert.Equal(t, 1, stateEvents)
	})

	t.Run("blocked listing stays blocked", func(t *testing.T) {
		p := newTestApartmentProperty(t)
		l, err := NewListingFromProperty(p, "")
		require.NoError(t, err)
		l.Block()

		require.NoError(t, p.MarkSold())
		l.SyncFromProperty(p)

		assert.Equal(t, ListingStateBlocked, l.State)
		assert.True(t, l.Price.Equal(p.Price)) // fields still mirrored
	})
}

func TestListingBlocking(t *testing.T) {
	t.Run("block then unblock restores sellable", func(t *testing.T) {
		l, err := NewListing(ListingKindEquipment, "EQ1", "", decimal.NewFromInt(50000))
		require.NoError(t, err)

		l.Block()
		assert.False(t, l.Sellable)
		assert.Equal(t, ListingStateBlocked, l.State)

		require.NoError(t, l.Unblock(ListingStateAvailable))
		assert.True(t, l.Sellable)
		assert.Equal(t, ListingStateAvailable, l.State)
	})

	t.Run("cannot set blocked directly", func(t *testing.T) {
		l, err := NewListing(ListingKindStore, "S01", "", decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.Error(t, l.SetState(ListingStateBlocked))
	})

	t.Run("cannot change state while blocked", func(t *testing.T) {
		l, err := NewListing(ListingKindStore, "S01", "", decimal.NewFromInt(1))
		require.NoError(t, err)
		l.Block()
		assert.Error(t, l.SetState(ListingStateSold))
	})
}

func TestDetachProperty(t *testing.T) {
	p := newTestApartmentProperty(t)
	l, err := NewListingFromProperty(p, "")
	require.NoError(t, err)

	l.DetachProperty()
	assert.False(t, l.HasProperty())

	// detaching twice is a no-op
	version := l.GetVersion()
	l.DetachProperty()
	assert.Equal(t, version, l.GetVersion())
}

func TestPropertyStateFor(t *testing.T) {
	l, err := NewListing(ListingKindApartment, "B0101", "", decimal.NewFromInt(1))
	require.NoError(t, err)

	state, ok := l.PropertyStateFor()
	require.True(t, ok)
	assert.Equal(t, realty.PropertyStateAvailable, state)

	l.Block()
	_, ok = l.PropertyStateFor()
	assert.False(t, ok)
}
