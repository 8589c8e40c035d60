package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func propertyColumns() []string {
	return []string{"id", "code", "name", "building_id", "floor", "area", "rooms",
		"bathrooms", "price", "description", "features", "state",
		"locked_by_order_id", "locked_at", "active", "version"}
}

func TestGormPropertyRepository_FindByID(t *testing.T) {
	t.Run("finds existing property", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPropertyRepository(gormDB)

		propertyID := uuid.New()
		buildingID := uuid.New()

		rows := sqlmock.NewRows(propertyColumns()).
			AddRow(propertyID, "B0101", "B0101", buildingID, 1, decimal.NewFromInt(85), 3,
				2, decimal.NewFromInt(900000), "", "{}", "available", nil, nil, true, 1)

		mock.ExpectQuery(`SELECT \* FROM "properties" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(propertyID, 1).
			WillReturnRows(rows)

		property, err := repo.FindByID(context.Background(), propertyID)

		assert.NoError(t, err)
		require.NotNil(t, property)
		assert.Equal(t, propertyID, property.ID)
		assert.Equal(t, "B0101", property.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing property", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPropertyRepository(gormDB)

		propertyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "properties" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(propertyID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		property, err := repo.FindByID(context.Background(), propertyID)

		assert.Error(t, err)
		assert.Nil(t, property)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPropertyRepository_FindByCode(t *testing.T) {
	t.Run("scopes the lookup to the building", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPropertyRepository(gormDB)

		propertyID := uuid.New()
		buildingID := uuid.New()

		rows := sqlmock.NewRows(propertyColumns()).
			AddRow(propertyID, "B0203", "B0203", buildingID, 2, decimal.NewFromInt(70), 2,
				1, decimal.NewFromInt(700000), "", "{}", "available", nil, nil, true, 1)

		mock.ExpectQuery(`SELECT \* FROM "properties" WHERE building_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(buildingID, "B0203", 1).
			WillReturnRows(rows)

		property, err := repo.FindByCode(context.Background(), buildingID, "B0203")

		assert.NoError(t, err)
		require.NotNil(t, property)
		assert.Equal(t, "B0203", property.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPropertyRepository_NextSequence(t *testing.T) {
	t.Run("counts units on the floor and adds one", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPropertyRepository(gormDB)

		buildingID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "properties" WHERE building_id = \$1 AND floor = \$2`).
			WithArgs(buildingID, 3).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		seq, err := repo.NextSequence(context.Background(), buildingID, 3)

		assert.NoError(t, err)
		assert.Equal(t, 5, seq)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPropertyRepository_FindLockedBefore(t *testing.T) {
	t.Run("returns only stale locks", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPropertyRepository(gormDB)

		propertyID := uuid.New()
		buildingID := uuid.New()
		orderID := uuid.New()
		lockedAt := time.Now().Add(-48 * time.Hour)
		cutoff := time.Now().Add(-24 * time.Hour)

		rows := sqlmock.NewRows(propertyColumns()).
			AddRow(propertyID, "B0101", "B0101", buildingID, 1, decimal.NewFromInt(85), 3,
				2, decimal.NewFromInt(900000), "", "{}", "in_progress", orderID, lockedAt, true, 2)

		mock.ExpectQuery(`SELECT \* FROM "properties" WHERE locked_by_order_id IS NOT NULL AND locked_at < \$1`).
			WithArgs(cutoff).
			WillReturnRows(rows)

		properties, err := repo.FindLockedBefore(context.Background(), cutoff)

		assert.NoError(t, err)
		require.Len(t, properties, 1)
		assert.True(t, properties[0].IsLockedBy(orderID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReservationOrderRepository_GenerateOrderNumber(t *testing.T) {
	t.Run("starts at one for a fresh year", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormReservationOrderRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "reservation_orders" WHERE order_number LIKE \$1 ORDER BY order_number DESC,.* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		number, err := repo.GenerateOrderNumber(context.Background())

		assert.NoError(t, err)
		assert.Regexp(t, `^RES-\d{4}-00001$`, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
