package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// Event types for the catalog domain
const (
	EventTypeListingCreated      = "catalog.listing.created"
	EventTypeListingUpdated      = "catalog.listing.updated"
	EventTypeListingStateChanged = "catalog.listing.state_changed"
	EventTypeListingDetached     = "catalog.listing.detached"
)

const aggregateTypeListing = "Listing"

// ListingCreatedEvent is raised when a listing is created
type ListingCreatedEvent struct {
	shared.BaseDomainEvent
	Code string      `json:"code"`
	Kind ListingKind `json:"kind"`
}

// NewListingCreatedEvent creates a new ListingCreatedEvent
func NewListingCreatedEvent(l *Listing) *ListingCreatedEvent {
	return &ListingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingCreated, aggregateTypeListing, l.ID),
		Code:            l.Code,
		Kind:            l.Kind,
	}
}

// ListingUpdatedEvent is raised when descriptive fields change
type ListingUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewListingUpdatedEvent creates a new ListingUpdatedEvent
func NewListingUpdatedEvent(l *Listing) *ListingUpdatedEvent {
	return &ListingUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingUpdated, aggregateTypeListing, l.ID),
		Code:            l.Code,
		Name:            l.Name,
	}
}

// ListingStateChangedEvent is raised on every state change of the mirror
// It carries kind and area so the quantity projector can run without a lookup
type ListingStateChangedEvent struct {
	shared.BaseDomainEvent
	Code     string          `json:"code"`
	Kind     ListingKind     `json:"kind"`
	OldState ListingState    `json:"old_state"`
	NewState ListingState    `json:"new_state"`
	Area     decimal.Decimal `json:"area"`
}

// NewListingStateChangedEvent creates a new ListingStateChangedEvent
func NewListingStateChangedEvent(l *Listing, oldState, newState ListingState) *ListingStateChangedEvent {
	return &ListingStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingStateChanged, aggregateTypeListing, l.ID),
		Code:            l.Code,
		Kind:            l.Kind,
		OldState:        oldState,
		NewState:        newState,
		Area:            l.Area,
	}
}

// ListingDetachedEvent is raised when the property back-reference is removed
type ListingDetachedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewListingDetachedEvent creates a new ListingDetachedEvent
func NewListingDetachedEvent(l *Listing) *ListingDetachedEvent {
	return &ListingDetachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingDetached, aggregateTypeListing, l.ID),
		Code:            l.Code,
	}
}
