package realty

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// PropertyService handles property lifecycle operations and keeps the
// catalog mirror in step through the sync service
type PropertyService struct {
	propertyRepo   realty.PropertyRepository
	buildingRepo   realty.BuildingRepository
	listingRepo    catalog.ListingRepository
	sync           *MirrorSyncService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(
	propertyRepo realty.PropertyRepository,
	buildingRepo realty.BuildingRepository,
	listingRepo catalog.ListingRepository,
	sync *MirrorSyncService,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		buildingRepo: buildingRepo,
		listingRepo:  listingRepo,
		sync:         sync,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PropertyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a property and its catalog mirror
// When the caller left the name to the default, the unit code is generated
// from the building code, floor and the next per-floor sequence
func (s *PropertyService) Create(ctx context.Context, req CreatePropertyRequest) (*PropertyResponse, error) {
	building, err := s.buildingRepo.FindByID(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}

	code := req.Name
	name := req.Name
	if realty.IsDefaultName(req.Name) || !realty.IsCodeLike(req.Name) {
		seq, err := s.propertyRepo.NextSequence(ctx, building.ID, req.Floor)
		if err != nil {
			return nil, err
		}
		code = realty.GenerateUnitCode(building.Code, req.Floor, seq)
		if realty.IsDefaultName(req.Name) {
			name = code
		}
	}

	property, err := realty.NewProperty(building.ID, code, name, req.Floor, req.Area, req.Price)
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

	if err := s.sync.SyncPropertyToListing(ctx, property, OriginProperty); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, property)

	response := ToPropertyResponse(property)
	return &response, nil
}

// Update updates a property and propagates the change to its mirror
func (s *PropertyService) Update(ctx context.Context, propertyID uuid.UUID, req UpdatePropertyRequest) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if err := property.Update(req.Name, req.Description, req.Rooms, req.Bathrooms, req.Price); err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	if err := s.sync.SyncPropertyToListing(ctx, property, OriginProperty); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, property)

	response := ToPropertyResponse(property)
	return &response, nil
}

// GetByID retrieves a property by ID
func (s *PropertyService) GetByID(ctx context.Context, propertyID uuid.UUID) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	response := ToPropertyResponse(property)
	return &response, nil
}

// List retrieves properties with filtering and pagination
func (s *PropertyService) List(ctx context.Context, filter PropertyListFilter) (shared.Paginated[PropertyResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.BuildingID != nil {
		domainFilter.Filters["building_id"] = *filter.BuildingID
	}
	if filter.State != nil {
		domainFilter.Filters["state"] = string(*filter.State)
	}
	if filter.Locked != nil {
		domainFilter.Filters["locked"] = *filter.Locked
	}

	page, err := s.propertyRepo.List(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[PropertyResponse]{}, err
	}

	return shared.Paginated[PropertyResponse]{
		Items:      ToPropertyResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Deactivate soft-deletes a property and detaches its mirror
func (s *PropertyService) Deactivate(ctx context.Context, propertyID uuid.UUID) error {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}

	if err := property.Deactivate(); err != nil {
		return err
	}
	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return err
	}

	listing, err := s.listingRepo.FindByPropertyID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.publishEvents(ctx, property)
			return nil
		}
		return err
	}
	listing.DetachProperty()
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return err
	}

	s.publishEvents(ctx, property)
	s.publishEvents(ctx, listing)
	return nil
}

// CreateBuilding creates a new building
func (s *PropertyService) CreateBuilding(ctx context.Context, req CreateBuildingRequest) (*BuildingResponse, error) {
	building, err := realty.NewBuilding(req.Code, req.Name, req.ProjectName)
	if err != nil {
		return nil, err
	}
	if req.Address != "" {
		if err := building.Update(building.Name, building.ProjectName, req.Address); err != nil {
			return nil, err
		}
	}

	if existing, err := s.buildingRepo.FindByCode(ctx, building.Code); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	if err := s.buildingRepo.Save(ctx, building); err != nil {
		return nil, err
	}

	response := ToBuildingResponse(building)
	return &response, nil
}

// GetBuilding retrieves a building by ID
func (s *PropertyService) GetBuilding(ctx context.Context, buildingID uuid.UUID) (*BuildingResponse, error) {
	building, err := s.buildingRepo.FindByID(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	response := ToBuildingResponse(building)
	return &response, nil
}

// ListBuildings retrieves buildings with pagination
func (s *PropertyService) ListBuildings(ctx context.Context, page, pageSize int, search string) (shared.Paginated[BuildingResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.Search = search

	result, err := s.buildingRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[BuildingResponse]{}, err
	}

	responses := make([]BuildingResponse, len(result.Items))
	for i, b := range result.Items {
		responses[i] = ToBuildingResponse(b)
	}
	return shared.Paginated[BuildingResponse]{
		Items:      responses,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// DeleteBuilding deactivates a building and all its properties
// Mirrors are detached, not deleted
func (s *PropertyService) DeleteBuilding(ctx context.Context, buildingID uuid.UUID) error {
	building, err := s.buildingRepo.FindByID(ctx, buildingID)
	if err != nil {
		return err
	}

	properties, err := s.propertyRepo.FindByBuilding(ctx, buildingID)
	if err != nil {
		return err
	}
	for _, property := range properties {
		if !property.Active {
			continue
		}
		if err := s.Deactivate(ctx, property.ID); err != nil {
			return err
		}
	}

	if err := building.Deactivate(); err != nil {
		return err
	}
	return s.buildingRepo.Save(ctx, building)
}

// Reconcile sweeps every property and resyncs its mirror
// Duplicate mirrors are collapsed to the oldest canonical one
func (s *PropertyService) Reconcile(ctx context.Context) (int, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 200

	reconciled := 0
	for {
		page, err := s.propertyRepo.List(ctx, filter)
		if err != nil {
			return reconciled, err
		}
		for _, property := range page.Items {
			if err := s.sync.SyncPropertyToListing(ctx, property, OriginProperty); err != nil {
				s.logger.Error("reconcile failed for property",
					zap.String("property_id", property.ID.String()),
					zap.Error(err))
				continue
			}
			reconciled++
		}
		if filter.Page >= page.TotalPages {
			return reconciled, nil
		}
		filter.Page++
	}
}

// publishEvents publishes and clears an aggregate's pending events
func (s *PropertyService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
