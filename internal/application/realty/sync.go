package realty

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// SyncOrigin identifies which side of the mirror initiated a write
// It is passed explicitly through every sync call so a propagated write
// never bounces back to the side it came from
type SyncOrigin string

const (
	OriginProperty SyncOrigin = "property"
	OriginListing  SyncOrigin = "listing"
	OriginOrder    SyncOrigin = "order"
)

// MirrorSyncService keeps a property and its catalog listing consistent
// Each write propagates to the other side exactly once
type MirrorSyncService struct {
	propertyRepo   realty.PropertyRepository
	listingRepo    catalog.ListingRepository
	buildingRepo   realty.BuildingRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewMirrorSyncService creates a new MirrorSyncService
func NewMirrorSyncService(
	propertyRepo realty.PropertyRepository,
	listingRepo catalog.ListingRepository,
	buildingRepo realty.BuildingRepository,
	logger *zap.Logger,
) *MirrorSyncService {
	return &MirrorSyncService{
		propertyRepo: propertyRepo,
		listingRepo:  listingRepo,
		buildingRepo: buildingRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *MirrorSyncService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SyncPropertyToListing pushes a property's current state onto its mirror
// When the write originated on the listing side the call is a no-op
func (s *MirrorSyncService) SyncPropertyToListing(ctx context.Context, property *realty.Property, origin SyncOrigin) error {
	if origin == OriginListing {
		return nil
	}

	listing, err := s.canonicalListing(ctx, property)
	if err != nil {
		return err
	}

	if listing == nil {
		listing, err = s.createMirror(ctx, property)
		if err != nil {
			return err
		}
	} else {
		listing.SyncFromProperty(property)
		if err := s.listingRepo.Save(ctx, listing); err != nil {
			return err
		}
	}

	s.publishEvents(ctx, listing)
	return nil
}

// SyncListingToProperty pushes a listing's fields back onto its property
// Only apartment listings carry a property; the call is a no-op otherwise,
// and also when the write originated on the property or order side
func (s *MirrorSyncService) SyncListingToProperty(ctx context.Context, listing *catalog.Listing, origin SyncOrigin) error {
	if origin == OriginProperty || origin == OriginOrder {
		return nil
	}
	if !listing.HasProperty() {
		return nil
	}

	property, err := s.propertyRepo.FindByID(ctx, *listing.PropertyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("consistency warning: listing references missing property",
				zap.String("listing_id", listing.ID.String()),
				zap.String("property_id", listing.PropertyID.String()))
			return nil
		}
		return err
	}

	if err := property.Update(listing.Name, listing.Description,
		listing.Rooms, listing.Bathrooms, listing.Price); err != nil {
		return err
	}

	if state, ok := listing.PropertyStateFor(); ok && property.State != state {
		if err := property.SetState(state); err != nil {
			return err
		}
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return err
	}

	s.publishEvents(ctx, property)
	return nil
}

// canonicalListing returns the single mirror for a property
// Duplicate mirrors are reconciled to the oldest one; the rest are detached
func (s *MirrorSyncService) canonicalListing(ctx context.Context, property *realty.Property) (*catalog.Listing, error) {
	listings, err := s.listingRepo.FindAllByPropertyID(ctx, property.ID)
	if err != nil {
		return nil, err
	}

	switch len(listings) {
	case 0:
		return nil, nil
	case 1:
		return listings[0], nil
	}

	s.logger.Warn("consistency warning: duplicate mirrors for property",
		zap.String("property_id", property.ID.String()),
		zap.Int("count", len(listings)))

	for _, extra := range listings[1:] {
		extra.DetachProperty()
		extra.Block()
		if err := s.listingRepo.Save(ctx, extra); err != nil {
			return nil, err
		}
	}

	return listings[0], nil
}

// createMirror lazily creates the apartment listing for a property
// An unlinked listing with the same building and code is adopted instead
func (s *MirrorSyncService) createMirror(ctx context.Context, property *realty.Property) (*catalog.Listing, error) {
	existing, err := s.listingRepo.FindByCode(ctx, property.BuildingID, property.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil && !existing.HasProperty() && existing.Kind == catalog.ListingKindApartment {
		propertyID := property.ID
		existing.PropertyID = &propertyID
		existing.SyncFromProperty(property)
		if err := s.listingRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	projectName := ""
	if building, err := s.buildingRepo.FindByID(ctx, property.BuildingID); err == nil {
		projectName = building.ProjectName
	}

	listing, err := catalog.NewListingFromProperty(property, projectName)
	if err != nil {
		return nil, err
	}
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// publishEvents publishes and clears an aggregate's pending events
func (s *MirrorSyncService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		aggregate.ClearDomainEvents()
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
