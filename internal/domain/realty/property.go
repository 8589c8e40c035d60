package realty

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// PropertyState represents the sales lifecycle state of a property
type PropertyState string

const (
	PropertyStateAvailable  PropertyState = "available"
	PropertyStateInProgress PropertyState = "in_progress"
	PropertyStateReserved   PropertyState = "reserved"
	PropertyStateSold       PropertyState = "sold"
)

// validTransitions lists the allowed state transitions
var validTransitions = map[PropertyState][]PropertyState{
	PropertyStateAvailable:  {PropertyStateInProgress, PropertyStateReserved, PropertyStateSold},
	PropertyStateInProgress: {PropertyStateReserved, PropertyStateSold, PropertyStateAvailable},
	PropertyStateReserved:   {PropertyStateSold, PropertyStateAvailable},
	PropertyStateSold:       {PropertyStateAvailable},
}

// Property represents a sellable real-estate unit
// It is the aggregate root for property-related operations and owns the
// reservation lock that serializes competing orders
type Property struct {
	shared.BaseAggregateRoot
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_property_building_code,priority:2"`
	Name            string          `gorm:"type:varchar(200);not null"`
	BuildingID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_property_building_code,priority:1"`
	Floor           int             `gorm:"not null;default:0"`
	Area            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Rooms           int             `gorm:"not null;default:0"`
	Bathrooms       int             `gorm:"not null;default:0"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description     string          `gorm:"type:text"`
	Features        string          `gorm:"type:jsonb"`
	State           PropertyState   `gorm:"type:varchar(20);not null;default:'available';index"`
	LockedByOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	LockedAt        *time.Time      `gorm:""`
	Active          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a new property in the available state
func NewProperty(buildingID uuid.UUID, code, name string, floor int, area, price decimal.Decimal) (*Property, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Property requires a building")
	}
	if err := validatePropertyCode(code); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = code
	}
	if !area.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AREA", "Property area must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Property price cannot be negative")
	}

	property := &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		BuildingID:        buildingID,
		Floor:             floor,
		Area:              area,
		Price:             price,
		State:             PropertyStateAvailable,
		Features:          "{}",
		Active:            true,
	}

	property.AddDomainEvent(NewPropertyCreatedEvent(property))

	return property, nil
}

// Update updates the property's descriptive fields
func (p *Property) Update(name, description string, rooms, bathrooms int, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	if rooms < 0 || bathrooms < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Room counts cannot be negative")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Property price cannot be negative")
	}

	p.Name = name
	p.Description = description
	p.Rooms = rooms
	p.Bathrooms = bathrooms
	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertyUpdatedEvent(p))

	return nil
}

// IsLocked returns true when a reservation lock is held
func (p *Property) IsLocked() bool {
	return p.LockedByOrderID != nil
}

// IsLockedBy returns true when the given order holds the lock
func (p *Property) IsLockedBy(orderID uuid.UUID) bool {
	return p.LockedByOrderID != nil && *p.LockedByOrderID == orderID
}

// AcquireLock takes the reservation lock for an order
// Acquiring a lock already held by the same order is a no-op
func (p *Property) AcquireLock(orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Lock requires an order")
	}
	if p.IsLockedBy(orderID) {
		return nil
	}
	if p.IsLocked() {
		return shared.ErrLockConflict
	}

	now := time.Now()
	p.LockedByOrderID = &orderID
	p.LockedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertyLockedEvent(p, orderID))

	return nil
}

// ReleaseLock releases the reservation lock if held by the given order
// Releasing a lock held by another order is a no-op
func (p *Property) ReleaseLock(orderID uuid.UUID) {
	if !p.IsLockedBy(orderID) {
		return
	}

	p.LockedByOrderID = nil
	p.LockedAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertyUnlockedEvent(p, orderID))
}

// ForceReleaseLock clears the lock regardless of holder
// Used by the lock sweeper for orders that were cancelled or deleted
func (p *Property) ForceReleaseLock() {
	if !p.IsLocked() {
		return
	}

	holder := *p.LockedByOrderID
	p.LockedByOrderID = nil
	p.LockedAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertyUnlockedEvent(p, holder))
}

// StartReservation locks the property for an order and moves it to in_progress
func (p *Property) StartReservation(orderID uuid.UUID) error {
	if p.State != PropertyStateAvailable {
		return shared.NewDomainError("NOT_AVAILABLE", "Property is not available for reservation")
	}
	if err := p.AcquireLock(orderID); err != nil {
		return err
	}

	return p.transition(PropertyStateInProgress)
}

// MarkReserved moves the property to the reserved state
func (p *Property) MarkReserved() error {
	return p.transition(PropertyStateReserved)
}

// MarkSold moves the property to the sold state
func (p *Property) MarkSold() error {
	return p.transition(PropertyStateSold)
}

// MarkAvailable reverts the property to the available state
func (p *Property) MarkAvailable() error {
	if p.State == PropertyStateAvailable {
		return nil
	}
	return p.transition(PropertyStateAvailable)
}

// SetState forces the property into the given state when the transition is legal
func (p *Property) SetState(state PropertyState) error {
	if p.State == state {
		return nil
	}
	return p.transition(state)
}

// transition applies a state change after checking the transition table
func (p *Property) transition(to PropertyState) error {
	allowed := false
	for _, s := range validTransitions[p.State] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot transition property from "+string(p.State)+" to "+string(to))
	}

	old := p.State
	p.State = to
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertyStateChangedEvent(p, old, to))

	return nil
}

// Deactivate soft-deletes the property
func (p *Property) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Property is already inactive")
	}
	if p.IsLocked() {
		return shared.NewDomainError("LOCKED", "Cannot deactivate a locked property")
	}

	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertyDeactivatedEvent(p))

	return nil
}

// IsAvailable returns true when the property can start a reservation
func (p *Property) IsAvailable() bool {
	return p.Active && p.State == PropertyStateAvailable && !p.IsLocked()
}

// validatePropertyCode validates the property code
func validatePropertyCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Property code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Property code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Property code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
