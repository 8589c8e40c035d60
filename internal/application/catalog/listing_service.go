package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appRealty "github.com/realty/backend/internal/application/realty"
	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// ListingService handles catalog-side listing operations
// Writes to apartment listings are synced back to the property mirror
type ListingService struct {
	listingRepo    catalog.ListingRepository
	propertyRepo   realty.PropertyRepository
	sync           *appRealty.MirrorSyncService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewListingService creates a new ListingService
func NewListingService(
	listingRepo catalog.ListingRepository,
	propertyRepo realty.PropertyRepository,
	sync *appRealty.MirrorSyncService,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo:  listingRepo,
		propertyRepo: propertyRepo,
		sync:         sync,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ListingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a listing; an apartment listing also creates its backing
// property so the pair stays consistent from the start
func (s *ListingService) Create(ctx context.Context, req CreateListingRequest) (*ListingResponse, error) {
	listing, err := catalog.NewListing(req.Kind, req.Code, req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	listing.BuildingID = req.BuildingID
	listing.Floor = req.Floor
	listing.Area = req.Area
	listing.Rooms = req.Rooms
	listing.Bathrooms = req.Bathrooms
	listing.Description = req.Description

	if req.Kind == catalog.ListingKindApartment {
		if req.BuildingID == nil {
			return nil, shared.NewDomainError("INVALID_BUILDING", "Apartment listing requires a building")
		}
		property, err := realty.NewProperty(*req.BuildingID, listing.Code, listing.Name,
			req.Floor, req.Area, req.Price)
		if err != nil {
			return nil, err
		}
		if req.Rooms > 0 || req.Bathrooms > 0 || req.Description != "" {
			if err := property.Update(property.Name, req.Description, req.Rooms, req.Bathrooms, req.Price); err != nil {
				return nil, err
			}
		}
		if err := s.propertyRepo.Save(ctx, property); err != nil {
			return nil, err
		}
		propertyID := property.ID
		listing.PropertyID = &propertyID
		// the property was written from the listing side, no echo back
		property.ClearDomainEvents()
	}

	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, listing)

	response := ToListingResponse(listing)
	return &response, nil
}

// Update updates a listing and syncs apartments back to their property
func (s *ListingService) Update(ctx context.Context, listingID uuid.UUID, req UpdateListingRequest) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := listing.Update(req.Name, req.Description, req.Price); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}

	if err := s.sync.SyncListingToProperty(ctx, listing, appRealty.OriginListing); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, listing)

	response := ToListingResponse(listing)
	return &response, nil
}

// Block makes a listing unsellable; the property side is untouched
func (s *ListingService) Block(ctx context.Context, listingID uuid.UUID) error {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return err
	}

	listing.Block()
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return err
	}

	s.publishEvents(ctx, listing)
	return nil
}

// Unblock makes a listing sellable again; apartments re-derive their state
// from the property, catalog-only listings go back to available
func (s *ListingService) Unblock(ctx context.Context, listingID uuid.UUID) error {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return err
	}

	state := catalog.ListingStateAvailable
	if listing.HasProperty() {
		property, err := s.propertyRepo.FindByID(ctx, *listing.PropertyID)
		if err != nil {
			return err
		}
		if err := listing.Unblock(state); err != nil {
			return err
		}
		listing.SyncFromProperty(property)
	} else {
		if err := listing.Unblock(state); err != nil {
			return err
		}
	}

	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return err
	}

	s.publishEvents(ctx, listing)
	return nil
}

// GetByID retrieves a listing by ID
func (s *ListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	response := ToListingResponse(listing)
	return &response, nil
}

// List retrieves listings with filtering and pagination
func (s *ListingService) List(ctx context.Context, filter ListingListFilter) (shared.Paginated[ListingResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Kind != nil {
		domainFilter.Filters["kind"] = string(*filter.Kind)
	}
	if filter.State != nil {
		domainFilter.Filters["state"] = string(*filter.State)
	}
	if filter.Sellable != nil {
		domainFilter.Filters["sellable"] = *filter.Sellable
	}

	page, err := s.listingRepo.List(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ListingResponse]{}, err
	}

	return shared.Paginated[ListingResponse]{
		Items:      ToListingResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// publishEvents publishes and clears an aggregate's pending events
func (s *ListingService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
