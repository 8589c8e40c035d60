package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/shared"
)

type ledgerKey struct {
	listingID  uuid.UUID
	locationID uuid.UUID
}

// fakeLedger records quantities and can fail a set number of writes
type fakeLedger struct {
	quantities map[ledgerKey]decimal.Decimal
	failures   int
	writes     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{quantities: make(map[ledgerKey]decimal.Decimal)}
}

func (l *fakeLedger) SetQuantity(_ context.Context, listingID, locationID uuid.UUID, qty decimal.Decimal) error {
	l.writes++
	if l.failures > 0 {
		l.failures--
		return errors.New("engine unavailable")
	}
	l.quantities[ledgerKey{listingID, locationID}] = qty
	return nil
}

func (l *fakeLedger) ReadQuantity(_ context.Context, listingID, locationID uuid.UUID) (decimal.Decimal, error) {
	qty, ok := l.quantities[ledgerKey{listingID, locationID}]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return qty, nil
}

type stubListingRepo struct {
	listings map[uuid.UUID]*catalog.Listing
}

func (r *stubListingRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *stubListingRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID) (*catalog.Listing, error) {
	for _, l := range r.listings {
		if l.PropertyID != nil && *l.PropertyID == propertyID {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubListingRepo) FindAllByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*catalog.Listing, error) {
	l, err := r.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, nil
	}
	return []*catalog.Listing{l}, nil
}

func (r *stubListingRepo) FindByCode(context.Context, uuid.UUID, string) (*catalog.Listing, error) {
	return nil, shared.ErrNotFound
}

func (r *stubListingRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*catalog.Listing], error) {
	items := make([]*catalog.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		items = append(items, l)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *stubListingRepo) Save(_ context.Context, l *catalog.Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *stubListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.listings, id)
	return nil
}

func newListing(t *testing.T, kind catalog.ListingKind, area int64) *catalog.Listing {
	t.Helper()
	l, err := catalog.NewListing(kind, "B0101", "", decimal.NewFromInt(1000000))
	require.NoError(t, err)
	l.Area = decimal.NewFromInt(area)
	l.ClearDomainEvents()
	return l
}

func TestProjectorHandle(t *testing.T) {
	ctx := context.Background()
	locationID := uuid.New()

	t.Run("available apartment projects one unit", func(t *testing.T) {
		ledger := newFakeLedger()
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l := newListing(t, catalog.ListingKindApartment, 85)
		evt := catalog.NewListingStateChangedEvent(l, catalog.ListingStateSold, catalog.ListingStateAvailable)

		require.NoError(t, projector.Handle(ctx, evt))

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(1)))
	})

	t.Run("fresh available apartment is on hand from creation", func(t *testing.T) {
		ledger := newFakeLedger()
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l, err := catalog.NewListing(catalog.ListingKindApartment, "B0101", "", decimal.NewFromInt(1000000))
		require.NoError(t, err)
		l.Area = decimal.NewFromInt(85)
		require.NoError(t, repo.Save(ctx, l))

		for _, evt := range l.GetDomainEvents() {
			require.NoError(t, projector.Handle(ctx, evt))
		}

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(1)))
	})

	t.Run("fresh available store is on hand for its area", func(t *testing.T) {
		ledger := newFakeLedger()
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l, err := catalog.NewListing(catalog.ListingKindStore, "STORE-1", "", decimal.NewFromInt(500000))
		require.NoError(t, err)
		l.Area = decimal.NewFromInt(120)
		require.NoError(t, repo.Save(ctx, l))

		for _, evt := range l.GetDomainEvents() {
			require.NoError(t, projector.Handle(ctx, evt))
		}

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(120)))
	})

	t.Run("available store projects its area", func(t *testing.T) {
		ledger := newFakeLedger()
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l := newListing(t, catalog.ListingKindStore, 120)
		evt := catalog.NewListingStateChangedEvent(l, catalog.ListingStateSold, catalog.ListingStateAvailable)

		require.NoError(t, projector.Handle(ctx, evt))

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(120)))
	})

	t.Run("reserved listing projects zero", func(t *testing.T) {
		ledger := newFakeLedger()
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l := newListing(t, catalog.ListingKindApartment, 85)
		evt := catalog.NewListingStateChangedEvent(l, catalog.ListingStateAvailable, catalog.ListingStateReserved)

		require.NoError(t, projector.Handle(ctx, evt))

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.IsZero())
	})

	t.Run("replaying the same event converges", func(t *testing.T) {
		ledger := newFakeLedger()
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l := newListing(t, catalog.ListingKindApartment, 85)
		evt := catalog.NewListingStateChangedEvent(l, catalog.ListingStateSold, catalog.ListingStateAvailable)

		require.NoError(t, projector.Handle(ctx, evt))
		require.NoError(t, projector.Handle(ctx, evt))
		require.NoError(t, projector.Handle(ctx, evt))

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(1)))
	})

	t.Run("retries once then swallows the failure", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.failures = 1
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l := newListing(t, catalog.ListingKindApartment, 85)
		evt := catalog.NewListingStateChangedEvent(l, catalog.ListingStateSold, catalog.ListingStateAvailable)

		require.NoError(t, projector.Handle(ctx, evt))
		assert.Equal(t, 2, ledger.writes)

		qty, err := ledger.ReadQuantity(ctx, l.ID, locationID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(decimal.NewFromInt(1)))
	})

	t.Run("persistent failure never propagates", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.failures = 10
		repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
		projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

		l := newListing(t, catalog.ListingKindApartment, 85)
		evt := catalog.NewListingStateChangedEvent(l, catalog.ListingStateSold, catalog.ListingStateAvailable)

		assert.NoError(t, projector.Handle(ctx, evt))
		assert.Equal(t, 2, ledger.writes) // one retry, no more
	})
}

func TestRecomputeAll(t *testing.T) {
	ctx := context.Background()
	locationID := uuid.New()

	ledger := newFakeLedger()
	repo := &stubListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
	projector := NewProjectorService(ledger, repo, locationID, zap.NewNop())

	available := newListing(t, catalog.ListingKindApartment, 85)
	require.NoError(t, repo.Save(ctx, available))

	sold := newListing(t, catalog.ListingKindApartment, 90)
	require.NoError(t, sold.SetState(catalog.ListingStateSold))
	require.NoError(t, repo.Save(ctx, sold))

	store := newListing(t, catalog.ListingKindStore, 150)
	require.NoError(t, repo.Save(ctx, store))

	updated, err := projector.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	qty, _ := ledger.ReadQuantity(ctx, available.ID, locationID)
	assert.True(t, qty.Equal(decimal.NewFromInt(1)))
	qty, _ = ledger.ReadQuantity(ctx, sold.ID, locationID)
	assert.True(t, qty.IsZero())
	qty, _ = ledger.ReadQuantity(ctx, store.ID, locationID)
	assert.True(t, qty.Equal(decimal.NewFromInt(150)))
}
