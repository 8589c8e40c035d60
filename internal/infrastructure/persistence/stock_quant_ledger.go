package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/inventory"
	"github.com/realty/backend/internal/domain/shared"
)

// StockQuant is the persisted on-hand quantity of a listing at a location
type StockQuant struct {
	shared.BaseEntity
	ListingID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quant_listing_location,priority:1"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quant_listing_location,priority:2"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockQuant) TableName() string {
	return "stock_quants"
}

// GormStockQuantLedger implements the inventory ledger using GORM
type GormStockQuantLedger struct {
	db *gorm.DB
}

// NewGormStockQuantLedger creates a new GormStockQuantLedger
func NewGormStockQuantLedger(db *gorm.DB) *GormStockQuantLedger {
	return &GormStockQuantLedger{db: db}
}

// SetQuantity replaces the full quantity for a listing at a location
// Existing rows are removed first so the write is absolute, never additive
func (l *GormStockQuantLedger) SetQuantity(ctx context.Context, listingID, locationID uuid.UUID, qty decimal.Decimal) error {
	return runInTransaction(ctx, l.db, func(ctx context.Context) error {
		tx := dbFromContext(ctx, l.db)

		if err := tx.WithContext(ctx).
			Where("listing_id = ? AND location_id = ?", listingID, locationID).
			Delete(&StockQuant{}).Error; err != nil {
			return err
		}

		quant := &StockQuant{
			BaseEntity: shared.NewBaseEntity(),
			ListingID:  listingID,
			LocationID: locationID,
			Quantity:   qty,
		}
		return tx.WithContext(ctx).Create(quant).Error
	})
}

// ReadQuantity returns the quantity for a listing at a location, zero when absent
func (l *GormStockQuantLedger) ReadQuantity(ctx context.Context, listingID, locationID uuid.UUID) (decimal.Decimal, error) {
	var quant StockQuant
	if err := dbFromContext(ctx, l.db).WithContext(ctx).
		Where("listing_id = ? AND location_id = ?", listingID, locationID).
		First(&quant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return quant.Quantity, nil
}

// Ensure GormStockQuantLedger implements the inventory ledger
var _ inventory.Ledger = (*GormStockQuantLedger)(nil)
