package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
)

// ListingKind classifies what a listing sells
// Exactly one kind applies to a listing for its whole lifetime
type ListingKind string

const (
	ListingKindApartment ListingKind = "apartment"
	ListingKindStore     ListingKind = "store"
	ListingKindEquipment ListingKind = "equipment"
)

// Valid reports whether the kind is one of the known values
func (k ListingKind) Valid() bool {
	switch k {
	case ListingKindApartment, ListingKindStore, ListingKindEquipment:
		return true
	}
	return false
}

// ListingState mirrors the property lifecycle plus a catalog-only blocked state
type ListingState string

const (
	ListingStateAvailable  ListingState = "available"
	ListingStateInProgress ListingState = "in_progress"
	ListingStateReserved   ListingState = "reserved"
	ListingStateSold       ListingState = "sold"
	ListingStateBlocked    ListingState = "blocked"
)

// Listing is the catalog-facing mirror of a sellable unit
// Apartments mirror a Property aggregate; stores and equipment are catalog-only
type Listing struct {
	shared.BaseAggregateRoot
	Code        string       `gorm:"type:varchar(50);not null;index"`
	Name        string       `gorm:"type:varchar(200);not null"`
	Kind        ListingKind  `gorm:"type:varchar(20);not null;index"`
	State       ListingState `gorm:"type:varchar(20);not null;default:'available';index"`
	Sellable    bool         `gorm:"not null;default:true"`
	PropertyID  *uuid.UUID   `gorm:"type:uuid;uniqueIndex"`
	BuildingID  *uuid.UUID   `gorm:"type:uuid;index"`
	ProjectName string       `gorm:"type:varchar(200)"`
	Floor       int          `gorm:"not null;default:0"`
	Area        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Rooms       int             `gorm:"not null;default:0"`
	Bathrooms   int             `gorm:"not null;default:0"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Listing) TableName() string {
	return "listings"
}

// NewListing creates a new sellable listing
func NewListing(kind ListingKind, code, name string, price decimal.Decimal) (*Listing, error) {
	if !kind.Valid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Listing kind must be apartment, store or equipment")
	}
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Listing code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		name = code
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Listing price cannot be negative")
	}

	listing := &Listing{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Kind:              kind,
		State:             ListingStateAvailable,
		Sellable:          true,
		Price:             price,
	}

	listing.AddDomainEvent(NewListingCreatedEvent(listing))

	return listing, nil
}

// NewListingFromProperty creates the apartment mirror for a property
func NewListingFromProperty(p *realty.Property, projectName string) (*Listing, error) {
	listing, err := NewListing(ListingKindApartment, p.Code, p.Name, p.Price)
	if err != nil {
		return nil, err
	}

	propertyID := p.ID
	buildingID := p.BuildingID
	listing.PropertyID = &propertyID
	listing.BuildingID = &buildingID
	listing.ProjectName = projectName
	listing.Floor = p.Floor
	listing.Area = p.Area
	listing.Rooms = p.Rooms
	listing.Bathrooms = p.Bathrooms
	listing.Description = p.Description
	listing.State = stateFromProperty(p.State)

	return listing, nil
}

// HasProperty reports whether the listing mirrors a property
func (l *Listing) HasProperty() bool {
	return l.PropertyID != nil
}

// SyncFromProperty copies the shared fields and derives the mirror state
// A non-sellable listing keeps the blocked state regardless of the property
func (l *Listing) SyncFromProperty(p *realty.Property) {
	l.Code = p.Code
	l.Name = p.Name
	l.Floor = p.Floor
	l.Area = p.Area
	l.Rooms = p.Rooms
	l.Bathrooms = p.Bathrooms
	l.Price = p.Price
	l.Description = p.Description

	target := stateFromProperty(p.State)
	if !l.Sellable {
		target = ListingStateBlocked
	}
	if l.State != target {
		old := l.State
		l.State = target
		l.AddDomainEvent(NewListingStateChangedEvent(l, old, target))
	}

	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// SetState moves the listing to the given state
// Blocked is reserved for the sellable toggle and cannot be set directly
func (l *Listing) SetState(state ListingState) error {
	if state == ListingStateBlocked {
		return shared.NewDomainError("INVALID_STATE", "Use Block to make a listing unsellable")
	}
	if !l.Sellable {
		return shared.NewDomainError("BLOCKED", "Listing is blocked")
	}
	if l.State == state {
		return nil
	}

	old := l.State
	l.State = state
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewListingStateChangedEvent(l, old, state))

	return nil
}

// Block makes the listing unsellable and forces the blocked state
func (l *Listing) Block() {
	if !l.Sellable && l.State == ListingStateBlocked {
		return
	}

	old := l.State
	l.Sellable = false
	l.State = ListingStateBlocked
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewListingStateChangedEvent(l, old, ListingStateBlocked))
}

// Unblock makes the listing sellable again in the given state
func (l *Listing) Unblock(state ListingState) error {
	if state == ListingStateBlocked {
		return shared.NewDomainError("INVALID_STATE", "Cannot unblock into the blocked state")
	}

	old := l.State
	l.Sellable = true
	l.State = state
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	if old != state {
		l.AddDomainEvent(NewListingStateChangedEvent(l, old, state))
	}

	return nil
}

// Update updates the listing's descriptive fields
func (l *Listing) Update(name, description string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Listing name cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Listing price cannot be negative")
	}

	l.Name = name
	l.Description = description
	l.Price = price
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewListingUpdatedEvent(l))

	return nil
}

// DetachProperty removes the back-reference to a deactivated property
// The listing survives as a catalog record
func (l *Listing) DetachProperty() {
	if l.PropertyID == nil {
		return
	}

	l.PropertyID = nil
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewListingDetachedEvent(l))
}

// stateFromProperty maps a property state onto the mirror
func stateFromProperty(s realty.PropertyState) ListingState {
	switch s {
	case realty.PropertyStateInProgress:
		return ListingStateInProgress
	case realty.PropertyStateReserved:
		return ListingStateReserved
	case realty.PropertyStateSold:
		return ListingStateSold
	default:
		return ListingStateAvailable
	}
}

// PropertyStateFor maps the listing state back to a property state
// Blocked has no property equivalent and reports false
func (l *Listing) PropertyStateFor() (realty.PropertyState, bool) {
	switch l.State {
	case ListingStateAvailable:
		return realty.PropertyStateAvailable, true
	case ListingStateInProgress:
		return realty.PropertyStateInProgress, true
	case ListingStateReserved:
		return realty.PropertyStateReserved, true
	case ListingStateSold:
		return realty.PropertyStateSold, true
	default:
		return "", false
	}
}
