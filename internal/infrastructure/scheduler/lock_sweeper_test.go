package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appRealty "github.com/realty/backend/internal/application/realty"
	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/trade"
)

type memPropertyRepo struct {
	properties map[uuid.UUID]*realty.Property
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{properties: make(map[uuid.UUID]*realty.Property)}
}

func (r *memPropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*realty.Property, error) {
	if p, ok := r.properties[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPropertyRepo) FindByCode(_ context.Context, buildingID uuid.UUID, code string) (*realty.Property, error) {
	for _, p := range r.properties {
		if p.BuildingID == buildingID && p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPropertyRepo) FindByBuilding(_ context.Context, buildingID uuid.UUID) ([]*realty.Property, error) {
	var out []*realty.Property
	for _, p := range r.properties {
		if p.BuildingID == buildingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPropertyRepo) NextSequence(_ context.Context, buildingID uuid.UUID, floor int) (int, error) {
	n := 1
	for _, p := range r.properties {
		if p.BuildingID == buildingID && p.Floor == floor {
			n++
		}
	}
	return n, nil
}

func (r *memPropertyRepo) FindLockedBefore(_ context.Context, before time.Time) ([]*realty.Property, error) {
	var out []*realty.Property
	for _, p := range r.properties {
		if p.IsLocked() && p.LockedAt.Before(before) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPropertyRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*realty.Property], error) {
	var out []*realty.Property
	for _, p := range r.properties {
		out = append(out, p)
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize), nil
}

func (r *memPropertyRepo) Save(_ context.Context, p *realty.Property) error {
	r.properties[p.ID] = p
	return nil
}

func (r *memPropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.properties, id)
	return nil
}

func (r *memPropertyRepo) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memListingRepo struct {
	listings map[uuid.UUID]*catalog.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
}

func (r *memListingRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Listing, error) {
	if l, ok := r.listings[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memListingRepo) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) (*catalog.Listing, error) {
	all, _ := r.FindAllByPropertyID(ctx, propertyID)
	if len(all) == 0 {
		return nil, shared.ErrNotFound
	}
	return all[0], nil
}

func (r *memListingRepo) FindAllByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*catalog.Listing, error) {
	var out []*catalog.Listing
	for _, l := range r.listings {
		if l.PropertyID != nil && *l.PropertyID == propertyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memListingRepo) FindByCode(_ context.Context, buildingID uuid.UUID, code string) (*catalog.Listing, error) {
	for _, l := range r.listings {
		if l.BuildingID != nil && *l.BuildingID == buildingID && l.Code == code {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memListingRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*catalog.Listing], error) {
	var out []*catalog.Listing
	for _, l := range r.listings {
		out = append(out, l)
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize), nil
}

func (r *memListingRepo) Save(_ context.Context, l *catalog.Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *memListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.listings, id)
	return nil
}

type memBuildingRepo struct {
	buildings map[uuid.UUID]*realty.Building
}

func newMemBuildingRepo() *memBuildingRepo {
	return &memBuildingRepo{buildings: make(map[uuid.UUID]*realty.Building)}
}

func (r *memBuildingRepo) FindByID(_ context.Context, id uuid.UUID) (*realty.Building, error) {
	if b, ok := r.buildings[id]; ok {
		return b, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memBuildingRepo) FindByCode(_ context.Context, code string) (*realty.Building, error) {
	for _, b := range r.buildings {
		if b.Code == code {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBuildingRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*realty.Building], error) {
	var out []*realty.Building
	for _, b := range r.buildings {
		out = append(out, b)
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize), nil
}

func (r *memBuildingRepo) Save(_ context.Context, b *realty.Building) error {
	r.buildings[b.ID] = b
	return nil
}

func (r *memBuildingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.buildings, id)
	return nil
}

type memOrderRepo struct {
	orders map[uuid.UUID]*trade.ReservationOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*trade.ReservationOrder)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.ReservationOrder, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*trade.ReservationOrder, error) {
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindActiveByProperty(_ context.Context, propertyID uuid.UUID) ([]*trade.ReservationOrder, error) {
	var out []*trade.ReservationOrder
	for _, o := range r.orders {
		if o.Status.IsActive() && o.HasLineFor(propertyID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) GenerateOrderNumber(_ context.Context) (string, error) {
	return "RES-2026-00001", nil
}

func (r *memOrderRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*trade.ReservationOrder], error) {
	var out []*trade.ReservationOrder
	for _, o := range r.orders {
		out = append(out, o)
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize), nil
}

func (r *memOrderRepo) Save(_ context.Context, o *trade.ReservationOrder) error {
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sweeperFixture struct {
	sweeper      *LockSweeper
	propertyRepo *memPropertyRepo
	listingRepo  *memListingRepo
	orderRepo    *memOrderRepo
	building     *realty.Building
}

func newSweeperFixture(t *testing.T) *sweeperFixture {
	t.Helper()

	propertyRepo := newMemPropertyRepo()
	listingRepo := newMemListingRepo()
	buildingRepo := newMemBuildingRepo()
	orderRepo := newMemOrderRepo()

	building, err := realty.NewBuilding("B", "Tower B", "Les Jardins")
	require.NoError(t, err)
	require.NoError(t, buildingRepo.Save(context.Background(), building))

	syncService := appRealty.NewMirrorSyncService(propertyRepo, listingRepo, buildingRepo, zap.NewNop())

	sweeper := NewLockSweeper(
		LockSweeperConfig{CheckInterval: time.Minute, Timeout: 24 * time.Hour},
		propertyRepo, orderRepo, syncService, zap.NewNop(),
	)

	return &sweeperFixture{
		sweeper:      sweeper,
		propertyRepo: propertyRepo,
		listingRepo:  listingRepo,
		orderRepo:    orderRepo,
		building:     building,
	}
}

func (f *sweeperFixture) lockedProperty(t *testing.T, orderID uuid.UUID, lockAge time.Duration) *realty.Property {
	t.Helper()

	property, err := realty.NewProperty(f.building.ID, "B0101", "",
		1, decimal.NewFromInt(85), decimal.NewFromInt(900000))
	require.NoError(t, err)
	require.NoError(t, property.StartReservation(orderID))
	property.ClearDomainEvents()

	lockedAt := time.Now().Add(-lockAge)
	property.LockedAt = &lockedAt
	require.NoError(t, f.propertyRepo.Save(context.Background(), property))
	return property
}

func TestLockSweeper_Sweep(t *testing.T) {
	t.Run("releases lock held by a cancelled order", func(t *testing.T) {
		f := newSweeperFixture(t)
		ctx := context.Background()

		order, err := trade.NewReservationOrder("RES-2026-00001", "Les Jardins", nil)
		require.NoError(t, err)
		require.NoError(t, order.Cancel("client withdrew"))
		require.NoError(t, f.orderRepo.Save(ctx, order))

		property := f.lockedProperty(t, order.ID, 48*time.Hour)

		require.NoError(t, f.sweeper.Sweep(ctx))

		assert.False(t, property.IsLocked())
		assert.Equal(t, realty.PropertyStateAvailable, property.State)
	})

	t.Run("releases lock whose order was deleted", func(t *testing.T) {
		f := newSweeperFixture(t)
		ctx := context.Background()

		property := f.lockedProperty(t, uuid.New(), 48*time.Hour)

		require.NoError(t, f.sweeper.Sweep(ctx))

		assert.False(t, property.IsLocked())
		assert.Equal(t, realty.PropertyStateAvailable, property.State)
	})

	t.Run("keeps fresh locks", func(t *testing.T) {
		f := newSweeperFixture(t)
		ctx := context.Background()

		property := f.lockedProperty(t, uuid.New(), time.Hour)

		require.NoError(t, f.sweeper.Sweep(ctx))

		assert.True(t, property.IsLocked())
		assert.Equal(t, realty.PropertyStateInProgress, property.State)
	})

	t.Run("keeps the reserved state when the holder is still active", func(t *testing.T) {
		f := newSweeperFixture(t)
		ctx := context.Background()

		order, err := trade.NewReservationOrder("RES-2026-00002", "Les Jardins", nil)
		require.NoError(t, err)
		require.NoError(t, order.MarkReserved())
		require.NoError(t, f.orderRepo.Save(ctx, order))

		property := f.lockedProperty(t, order.ID, 48*time.Hour)
		require.NoError(t, property.MarkReserved())
		property.ClearDomainEvents()

		require.NoError(t, f.sweeper.Sweep(ctx))

		assert.False(t, property.IsLocked())
		assert.Equal(t, realty.PropertyStateReserved, property.State)
	})

	t.Run("syncs the released property onto its mirror", func(t *testing.T) {
		f := newSweeperFixture(t)
		ctx := context.Background()

		property := f.lockedProperty(t, uuid.New(), 48*time.Hour)

		require.NoError(t, f.sweeper.Sweep(ctx))

		listing, err := f.listingRepo.FindByPropertyID(ctx, property.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.ListingStateAvailable, listing.State)
	})
}
