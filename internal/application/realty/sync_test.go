package realty

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// fakePropertyRepo is an in-memory PropertyRepository
type fakePropertyRepo struct {
	properties map[uuid.UUID]*realty.Property
	saves      int
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[uuid.UUID]*realty.Property)}
}

func (r *fakePropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*realty.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePropertyRepo) FindByCode(_ context.Context, buildingID uuid.UUID, code string) (*realty.Property, error) {
	for _, p := range r.properties {
		if p.BuildingID == buildingID && p.Code == strings.ToUpper(code) {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePropertyRepo) FindByBuilding(_ context.Context, buildingID uuid.UUID) ([]*realty.Property, error) {
	var out []*realty.Property
	for _, p := range r.properties {
		if p.BuildingID == buildingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) NextSequence(_ context.Context, buildingID uuid.UUID, floor int) (int, error) {
	count := 0
	for _, p := range r.properties {
		if p.BuildingID == buildingID && p.Floor == floor {
			count++
		}
	}
	return count + 1, nil
}

func (r *fakePropertyRepo) FindLockedBefore(_ context.Context, before time.Time) ([]*realty.Property, error) {
	var out []*realty.Property
	for _, p := range r.properties {
		if p.LockedAt != nil && p.LockedAt.Before(before) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*realty.Property], error) {
	items := make([]*realty.Property, 0, len(r.properties))
	for _, p := range r.properties {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakePropertyRepo) Save(_ context.Context, p *realty.Property) error {
	r.properties[p.ID] = p
	r.saves++
	return nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.properties, id)
	return nil
}

func (r *fakePropertyRepo) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeListingRepo is an in-memory ListingRepository
type fakeListingRepo struct {
	listings map[uuid.UUID]*catalog.Listing
	saves    int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[uuid.UUID]*catalog.Listing)}
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *fakeListingRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID) (*catalog.Listing, error) {
	for _, l := range r.listings {
		if l.PropertyID != nil && *l.PropertyID == propertyID {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeListingRepo) FindAllByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*catalog.Listing, error) {
	var out []*catalog.Listing
	for _, l := range r.listings {
		if l.PropertyID != nil && *l.PropertyID == propertyID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeListingRepo) FindByCode(_ context.Context, buildingID uuid.UUID, code string) (*catalog.Listing, error) {
	for _, l := range r.listings {
		if l.BuildingID != nil && *l.BuildingID == buildingID && l.Code == strings.ToUpper(code) {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeListingRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*catalog.Listing], error) {
	items := make([]*catalog.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		items = append(items, l)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakeListingRepo) Save(_ context.Context, l *catalog.Listing) error {
	r.listings[l.ID] = l
	r.saves++
	return nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.listings, id)
	return nil
}

// fakeBuildingRepo is an in-memory BuildingRepository
type fakeBuildingRepo struct {
	buildings map[uuid.UUID]*realty.Building
}

func newFakeBuildingRepo() *fakeBuildingRepo {
	return &fakeBuildingRepo{buildings: make(map[uuid.UUID]*realty.Building)}
}

func (r *fakeBuildingRepo) FindByID(_ context.Context, id uuid.UUID) (*realty.Building, error) {
	b, ok := r.buildings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *fakeBuildingRepo) FindByCode(_ context.Context, code string) (*realty.Building, error) {
	for _, b := range r.buildings {
		if b.Code == strings.ToUpper(code) {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBuildingRepo) List(_ context.Context, filter shared.Filter) (shared.Paginated[*realty.Building], error) {
	items := make([]*realty.Building, 0, len(r.buildings))
	for _, b := range r.buildings {
		items = append(items, b)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakeBuildingRepo) Save(_ context.Context, b *realty.Building) error {
	r.buildings[b.ID] = b
	return nil
}

func (r *fakeBuildingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.buildings, id)
	return nil
}

type syncFixture struct {
	propertyRepo *fakePropertyRepo
	listingRepo  *fakeListingRepo
	buildingRepo *fakeBuildingRepo
	sync         *MirrorSyncService
	building     *realty.Building
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	propertyRepo := newFakePropertyRepo()
	listingRepo := newFakeListingRepo()
	buildingRepo := newFakeBuildingRepo()

	building, err := realty.NewBuilding("B", "Tower B", "Les Jardins")
	require.NoError(t, err)
	require.NoError(t, buildingRepo.Save(context.Background(), building))

	return &syncFixture{
		propertyRepo: propertyRepo,
		listingRepo:  listingRepo,
		buildingRepo: buildingRepo,
		sync:         NewMirrorSyncService(propertyRepo, listingRepo, buildingRepo, zap.NewNop()),
		building:     building,
	}
}

func (f *syncFixture) newProperty(t *testing.T) *realty.Property {
	t.Helper()
	p, err := realty.NewProperty(f.building.ID, "B0101", "B0101", 1,
		decimal.NewFromInt(85), decimal.NewFromInt(1200000))
	require.NoError(t, err)
	p.ClearDomainEvents()
	require.NoError(t, f.propertyRepo.Save(context.Background(), p))
	return p
}

func TestSyncPropertyToListing(t *testing.T) {
	ctx := context.Background()

	t.Run("creates mirror lazily", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)

		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		listing, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.ListingKindApartment, listing.Kind)
		assert.Equal(t, p.Code, listing.Code)
		assert.Equal(t, "Les Jardins", listing.ProjectName)
	})

	t.Run("adopts unlinked listing with matching code", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)

		orphan, err := catalog.NewListing(catalog.ListingKindApartment, p.Code, p.Name, p.Price)
		require.NoError(t, err)
		buildingID := f.building.ID
		orphan.BuildingID = &buildingID
		require.NoError(t, f.listingRepo.Save(ctx, orphan))

		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		assert.Len(t, f.listingRepo.listings, 1)
		linked, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, orphan.ID, linked.ID)
	})

	t.Run("propagates state exactly once", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)
		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		require.NoError(t, p.StartReservation(uuid.New()))
		p.ClearDomainEvents()
		propertySaves := f.propertyRepo.saves

		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		listing, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.ListingStateInProgress, listing.State)
		// the far side never writes back to the property
		assert.Equal(t, propertySaves, f.propertyRepo.saves)
	})

	t.Run("suppressed when write came from listing side", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)

		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginListing))
		assert.Empty(t, f.listingRepo.listings)
	})

	t.Run("reconciles duplicate mirrors to the oldest", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)

		first, err := catalog.NewListingFromProperty(p, "")
		require.NoError(t, err)
		require.NoError(t, f.listingRepo.Save(ctx, first))

		dup, err := catalog.NewListingFromProperty(p, "")
		require.NoError(t, err)
		dup.CreatedAt = first.CreatedAt.Add(time.Minute)
		require.NoError(t, f.listingRepo.Save(ctx, dup))

		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		canonical, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, canonical.ID)

		detached, err := f.listingRepo.FindByID(ctx, dup.ID)
		require.NoError(t, err)
		assert.False(t, detached.HasProperty())
		assert.Equal(t, catalog.ListingStateBlocked, detached.State)
	})
}

func TestSyncListingToProperty(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes fields and state back", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)
		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		listing, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
		require.NoError(t, err)
		require.NoError(t, listing.Update("B0101 premium", "sea view", decimal.NewFromInt(1500000)))
		require.NoError(t, listing.SetState(catalog.ListingStateReserved))

		require.NoError(t, f.sync.SyncListingToProperty(ctx, listing, OriginListing))

		updated, err := f.propertyRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "B0101 premium", updated.Name)
		assert.True(t, updated.Price.Equal(decimal.NewFromInt(1500000)))
		assert.Equal(t, realty.PropertyStateReserved, updated.State)
	})

	t.Run("suppressed when write came from property side", func(t *testing.T) {
		f := newSyncFixture(t)
		p := f.newProperty(t)
		require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

		listing, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
		require.NoError(t, err)
		saves := f.propertyRepo.saves

		require.NoError(t, f.sync.SyncListingToProperty(ctx, listing, OriginProperty))
		assert.Equal(t, saves, f.propertyRepo.saves)
	})

	t.Run("no-op for catalog-only listings", func(t *testing.T) {
		f := newSyncFixture(t)
		store, err := catalog.NewListing(catalog.ListingKindStore, "S01", "", decimal.NewFromInt(1))
		require.NoError(t, err)

		require.NoError(t, f.sync.SyncListingToProperty(ctx, store, OriginListing))
		assert.Zero(t, f.propertyRepo.saves)
	})
}

func TestPropertyServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("generates unit code for default name", func(t *testing.T) {
		f := newSyncFixture(t)
		svc := NewPropertyService(f.propertyRepo, f.buildingRepo, f.listingRepo, f.sync, zap.NewNop())

		resp, err := svc.Create(ctx, CreatePropertyRequest{
			BuildingID: f.building.ID,
			Name:       "",
			Floor:      1,
			Area:       decimal.NewFromInt(85),
			Price:      decimal.NewFromInt(1200000),
		})
		require.NoError(t, err)
		assert.Equal(t, "B0101", resp.Code)

		resp2, err := svc.Create(ctx, CreatePropertyRequest{
			BuildingID: f.building.ID,
			Name:       "new",
			Floor:      1,
			Area:       decimal.NewFromInt(90),
			Price:      decimal.NewFromInt(1300000),
		})
		require.NoError(t, err)
		assert.Equal(t, "B0102", resp2.Code)
	})

	t.Run("keeps explicit name as code", func(t *testing.T) {
		f := newSyncFixture(t)
		svc := NewPropertyService(f.propertyRepo, f.buildingRepo, f.listingRepo, f.sync, zap.NewNop())

		resp, err := svc.Create(ctx, CreatePropertyRequest{
			BuildingID: f.building.ID,
			Name:       "PH-01",
			Floor:      9,
			Area:       decimal.NewFromInt(200),
			Price:      decimal.NewFromInt(5000000),
		})
		require.NoError(t, err)
		assert.Equal(t, "PH-01", resp.Code)
	})

	t.Run("generates code for a name that cannot serve as one", func(t *testing.T) {
		f := newSyncFixture(t)
		svc := NewPropertyService(f.propertyRepo, f.buildingRepo, f.listingRepo, f.sync, zap.NewNop())

		resp, err := svc.Create(ctx, CreatePropertyRequest{
			BuildingID: f.building.ID,
			Name:       "Penthouse A",
			Floor:      9,
			Area:       decimal.NewFromInt(200),
			Price:      decimal.NewFromInt(5000000),
		})
		require.NoError(t, err)
		assert.Equal(t, "B0901", resp.Code)
		assert.Equal(t, "Penthouse A", resp.Name)
	})

	t.Run("create auto-creates mirror", func(t *testing.T) {
		f := newSyncFixture(t)
		svc := NewPropertyService(f.propertyRepo, f.buildingRepo, f.listingRepo, f.sync, zap.NewNop())

		resp, err := svc.Create(ctx, CreatePropertyRequest{
			BuildingID: f.building.ID,
			Floor:      2,
			Area:       decimal.NewFromInt(70),
			Price:      decimal.NewFromInt(900000),
		})
		require.NoError(t, err)

		listing, err := f.listingRepo.FindByPropertyID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.Code, listing.Code)
	})
}

func TestPropertyServiceDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	svc := NewPropertyService(f.propertyRepo, f.buildingRepo, f.listingRepo, f.sync, zap.NewNop())

	p := f.newProperty(t)
	require.NoError(t, f.sync.SyncPropertyToListing(ctx, p, OriginProperty))

	require.NoError(t, svc.Deactivate(ctx, p.ID))

	_, err := f.listingRepo.FindByPropertyID(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound) // mirror detached, not deleted

	assert.Len(t, f.listingRepo.listings, 1)
}
