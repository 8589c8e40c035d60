package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/inventory"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// ProjectorService projects listing states into the stock ledger
// Every write replaces the full on-hand quantity, so replaying the same
// event any number of times converges on the same ledger row
//
// Projection failures never propagate to the caller: the write is retried
// once and then logged, because a stock hiccup must not roll back a sale
type ProjectorService struct {
	ledger      inventory.Ledger
	listingRepo catalog.ListingRepository
	locationID  uuid.UUID
	logger      *zap.Logger
}

// NewProjectorService creates a new ProjectorService
func NewProjectorService(ledger inventory.Ledger, listingRepo catalog.ListingRepository, locationID uuid.UUID, logger *zap.Logger) *ProjectorService {
	return &ProjectorService{
		ledger:      ledger,
		listingRepo: listingRepo,
		locationID:  locationID,
		logger:      logger,
	}
}

// EventTypes returns the event types this projector processes
func (s *ProjectorService) EventTypes() []string {
	return []string{
		catalog.EventTypeListingCreated,
		catalog.EventTypeListingStateChanged,
		realty.EventTypePropertyStateChanged,
	}
}

// Handle processes a listing lifecycle event and updates the ledger
// Creation seeds the initial row, so a fresh available unit is on hand
// before its first state change
func (s *ProjectorService) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *catalog.ListingCreatedEvent:
		// the created event fires before area and state settle, read the row
		listing, err := s.listingRepo.FindByID(ctx, evt.AggregateID())
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				s.logger.Error("projector could not load created listing",
					zap.String("listing_id", evt.AggregateID().String()),
					zap.Error(err))
			}
			return nil
		}
		qty := inventory.QuantityFor(listing.State, listing.Kind, listing.Area)
		s.project(ctx, listing.ID, qty)
	case *catalog.ListingStateChangedEvent:
		qty := inventory.QuantityFor(evt.NewState, evt.Kind, evt.Area)
		s.project(ctx, evt.AggregateID(), qty)
	case *realty.PropertyStateChangedEvent:
		listing, err := s.listingRepo.FindByPropertyID(ctx, evt.AggregateID())
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				s.logger.Error("projector could not load mirror",
					zap.String("property_id", evt.AggregateID().String()),
					zap.Error(err))
			}
			return nil
		}
		qty := inventory.QuantityFor(listing.State, listing.Kind, listing.Area)
		s.project(ctx, listing.ID, qty)
	}
	return nil
}

// Quantity reads the projected on-hand quantity for a listing
func (s *ProjectorService) Quantity(ctx context.Context, listingID uuid.UUID) (decimal.Decimal, error) {
	return s.ledger.ReadQuantity(ctx, listingID, s.locationID)
}

// RecomputeAll sweeps every listing and rewrites its ledger quantity
// Used to reconcile drift after an engine outage
func (s *ProjectorService) RecomputeAll(ctx context.Context) (int, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 200

	updated := 0
	for {
		page, err := s.listingRepo.List(ctx, filter)
		if err != nil {
			return updated, err
		}
		for _, listing := range page.Items {
			qty := inventory.QuantityFor(listing.State, listing.Kind, listing.Area)
			s.project(ctx, listing.ID, qty)
			updated++
		}
		if filter.Page >= page.TotalPages {
			return updated, nil
		}
		filter.Page++
	}
}

// project writes the quantity with one retry, then verifies the row
func (s *ProjectorService) project(ctx context.Context, listingID uuid.UUID, qty decimal.Decimal) {
	err := s.ledger.SetQuantity(ctx, listingID, s.locationID, qty)
	if err != nil {
		s.logger.Warn("ledger write failed, retrying once",
			zap.String("listing_id", listingID.String()), zap.Error(err))
		err = s.ledger.SetQuantity(ctx, listingID, s.locationID, qty)
	}
	if err != nil {
		s.logger.Error("ledger write failed after retry, quantities may drift",
			zap.String("listing_id", listingID.String()),
			zap.String("quantity", qty.String()),
			zap.Error(err))
		return
	}

	stored, err := s.ledger.ReadQuantity(ctx, listingID, s.locationID)
	if err != nil {
		s.logger.Warn("ledger verification read failed",
			zap.String("listing_id", listingID.String()), zap.Error(err))
		return
	}
	if !stored.Equal(qty) {
		s.logger.Warn("consistency warning: ledger quantity drift",
			zap.String("listing_id", listingID.String()),
			zap.String("expected", qty.String()),
			zap.String("actual", stored.String()))
	}
}
