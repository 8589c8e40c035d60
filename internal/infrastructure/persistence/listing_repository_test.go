package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/shared"
)

func setupListingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&catalog.Listing{}))
	return db
}

func newTestListing(t *testing.T, kind catalog.ListingKind, code string) *catalog.Listing {
	t.Helper()
	listing, err := catalog.NewListing(kind, code, "Listing "+code, decimal.NewFromInt(100000))
	require.NoError(t, err)
	listing.ClearDomainEvents()
	return listing
}

func TestGormListingRepository_FindByPropertyID(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	propertyID := uuid.New()

	t.Run("returns not found when no mirror exists", func(t *testing.T) {
		_, err := repo.FindByPropertyID(ctx, propertyID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds the mirror for a property", func(t *testing.T) {
		mirror := newTestListing(t, catalog.ListingKindApartment, "A0101")
		mirror.PropertyID = &propertyID
		mirror.CreatedAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, repo.Save(ctx, mirror))

		unrelated := newTestListing(t, catalog.ListingKindApartment, "A0102")
		require.NoError(t, repo.Save(ctx, unrelated))

		found, err := repo.FindByPropertyID(ctx, propertyID)
		require.NoError(t, err)
		assert.Equal(t, mirror.ID, found.ID)

		all, err := repo.FindAllByPropertyID(ctx, propertyID)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, mirror.ID, all[0].ID)
	})
}

func TestGormListingRepository_FindByCode(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	otherBuildingID := uuid.New()

	listing := newTestListing(t, catalog.ListingKindApartment, "B0201")
	listing.BuildingID = &buildingID
	require.NoError(t, repo.Save(ctx, listing))

	t.Run("finds by code within the building", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, buildingID, "B0201")
		require.NoError(t, err)
		assert.Equal(t, listing.ID, found.ID)
	})

	t.Run("code is scoped to the building", func(t *testing.T) {
		_, err := repo.FindByCode(ctx, otherBuildingID, "B0201")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormListingRepository_List(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	propertyID := uuid.New()

	apartment := newTestListing(t, catalog.ListingKindApartment, "C0301")
	apartment.PropertyID = &propertyID
	require.NoError(t, repo.Save(ctx, apartment))

	store := newTestListing(t, catalog.ListingKindStore, "STORE-1")
	store.Block()
	store.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, store))

	t.Run("filters by kind", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["kind"] = string(catalog.ListingKindStore)

		page, err := repo.List(ctx, filter)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "STORE-1", page.Items[0].Code)
	})

	t.Run("filters by sellable", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["sellable"] = false

		page, err := repo.List(ctx, filter)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, catalog.ListingStateBlocked, page.Items[0].State)
	})

	t.Run("filters by mirror presence", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["mirrored"] = true

		page, err := repo.List(ctx, filter)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, apartment.ID, page.Items[0].ID)

		filter.Filters["mirrored"] = false
		page, err = repo.List(ctx, filter)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, store.ID, page.Items[0].ID)
	})

	t.Run("reports totals with pagination", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 1

		page, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Items, 1)
	})
}

func TestGormListingRepository_Delete(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	listing := newTestListing(t, catalog.ListingKindEquipment, "EQ-1")
	require.NoError(t, repo.Save(ctx, listing))

	require.NoError(t, repo.Delete(ctx, listing.ID))

	_, err := repo.FindByID(ctx, listing.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("deleting a missing listing reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
