package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// Event types for the trade domain
const (
	EventTypeReservationOrderCreated   = "trade.reservation_order.created"
	EventTypeReservationLineAdded      = "trade.reservation_order.line_added"
	EventTypeReservationLineRemoved    = "trade.reservation_order.line_removed"
	EventTypeReservationOrderConfirmed = "trade.reservation_order.confirmed"
	EventTypeReservationOrderCancelled = "trade.reservation_order.cancelled"
	EventTypeReservationOrderCompleted = "trade.reservation_order.completed"
)

const aggregateTypeReservationOrder = "ReservationOrder"

// ReservationOrderCreatedEvent is raised when an order is created
type ReservationOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewReservationOrderCreatedEvent creates a new ReservationOrderCreatedEvent
func NewReservationOrderCreatedEvent(o *ReservationOrder) *ReservationOrderCreatedEvent {
	return &ReservationOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationOrderCreated, aggregateTypeReservationOrder, o.ID),
		OrderNumber:     o.OrderNumber,
	}
}

// ReservationLineAddedEvent is raised when a property line is added
type ReservationLineAddedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	PropertyID  uuid.UUID       `json:"property_id"`
	Price       decimal.Decimal `json:"price"`
}

// NewReservationLineAddedEvent creates a new ReservationLineAddedEvent
func NewReservationLineAddedEvent(o *ReservationOrder, line *ReservationLine) *ReservationLineAddedEvent {
	return &ReservationLineAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationLineAdded, aggregateTypeReservationOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		PropertyID:      line.PropertyID,
		Price:           line.Price,
	}
}

// ReservationLineRemovedEvent is raised when a property line is removed
type ReservationLineRemovedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	PropertyID  uuid.UUID `json:"property_id"`
}

// NewReservationLineRemovedEvent creates a new ReservationLineRemovedEvent
func NewReservationLineRemovedEvent(o *ReservationOrder, line *ReservationLine) *ReservationLineRemovedEvent {
	return &ReservationLineRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationLineRemoved, aggregateTypeReservationOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		PropertyID:      line.PropertyID,
	}
}

// ReservationOrderConfirmedEvent is raised on confirmation
type ReservationOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Total       decimal.Decimal `json:"total"`
}

// NewReservationOrderConfirmedEvent creates a new ReservationOrderConfirmedEvent
func NewReservationOrderConfirmedEvent(o *ReservationOrder) *ReservationOrderConfirmedEvent {
	evt := &ReservationOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationOrderConfirmed, aggregateTypeReservationOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Total:           o.Total(),
	}
	if o.CustomerID != nil {
		evt.CustomerID = *o.CustomerID
	}
	return evt
}

// ReservationOrderCancelledEvent is raised on cancellation
type ReservationOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewReservationOrderCancelledEvent creates a new ReservationOrderCancelledEvent
func NewReservationOrderCancelledEvent(o *ReservationOrder, reason string) *ReservationOrderCancelledEvent {
	return &ReservationOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationOrderCancelled, aggregateTypeReservationOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}

// ReservationOrderCompletedEvent is raised when an order is done
type ReservationOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewReservationOrderCompletedEvent creates a new ReservationOrderCompletedEvent
func NewReservationOrderCompletedEvent(o *ReservationOrder) *ReservationOrderCompletedEvent {
	return &ReservationOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationOrderCompleted, aggregateTypeReservationOrder, o.ID),
		OrderNumber:     o.OrderNumber,
	}
}
