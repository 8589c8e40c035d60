package realty

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// Event types for the realty domain
const (
	EventTypePropertyCreated      = "realty.property.created"
	EventTypePropertyUpdated      = "realty.property.updated"
	EventTypePropertyStateChanged = "realty.property.state_changed"
	EventTypePropertyLocked       = "realty.property.locked"
	EventTypePropertyUnlocked     = "realty.property.unlocked"
	EventTypePropertyDeactivated  = "realty.property.deactivated"
)

const aggregateTypeProperty = "Property"

// PropertyCreatedEvent is raised when a property is created
type PropertyCreatedEvent struct {
	shared.BaseDomainEvent
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	BuildingID uuid.UUID `json:"building_id"`
	Floor      int       `json:"floor"`
}

// NewPropertyCreatedEvent creates a new PropertyCreatedEvent
func NewPropertyCreatedEvent(p *Property) *PropertyCreatedEvent {
	return &PropertyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyCreated, aggregateTypeProperty, p.ID),
		Code:            p.Code,
		Name:            p.Name,
		BuildingID:      p.BuildingID,
		Floor:           p.Floor,
	}
}

// PropertyUpdatedEvent is raised when descriptive fields change
type PropertyUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewPropertyUpdatedEvent creates a new PropertyUpdatedEvent
func NewPropertyUpdatedEvent(p *Property) *PropertyUpdatedEvent {
	return &PropertyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyUpdated, aggregateTypeProperty, p.ID),
		Code:            p.Code,
		Name:            p.Name,
	}
}

// PropertyStateChangedEvent is raised on every lifecycle transition
// It carries enough data for the quantity projector to run without a lookup
type PropertyStateChangedEvent struct {
	shared.BaseDomainEvent
	Code     string          `json:"code"`
	OldState PropertyState   `json:"old_state"`
	NewState PropertyState   `json:"new_state"`
	Area     decimal.Decimal `json:"area"`
}

// NewPropertyStateChangedEvent creates a new PropertyStateChangedEvent
func NewPropertyStateChangedEvent(p *Property, oldState, newState PropertyState) *PropertyStateChangedEvent {
	return &PropertyStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyStateChanged, aggregateTypeProperty, p.ID),
		Code:            p.Code,
		OldState:        oldState,
		NewState:        newState,
		Area:            p.Area,
	}
}

// PropertyLockedEvent is raised when an order takes the reservation lock
type PropertyLockedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewPropertyLockedEvent creates a new PropertyLockedEvent
func NewPropertyLockedEvent(p *Property, orderID uuid.UUID) *PropertyLockedEvent {
	return &PropertyLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyLocked, aggregateTypeProperty, p.ID),
		OrderID:         orderID,
	}
}

// PropertyUnlockedEvent is raised when the reservation lock is released
type PropertyUnlockedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewPropertyUnlockedEvent creates a new PropertyUnlockedEvent
func NewPropertyUnlockedEvent(p *Property, orderID uuid.UUID) *PropertyUnlockedEvent {
	return &PropertyUnlockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyUnlocked, aggregateTypeProperty, p.ID),
		OrderID:         orderID,
	}
}

// PropertyDeactivatedEvent is raised when a property is soft-deleted
type PropertyDeactivatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewPropertyDeactivatedEvent creates a new PropertyDeactivatedEvent
func NewPropertyDeactivatedEvent(p *Property) *PropertyDeactivatedEvent {
	return &PropertyDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyDeactivated, aggregateTypeProperty, p.ID),
		Code:            p.Code,
	}
}
