package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// OrderStatus represents the status of a reservation order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusReserved  OrderStatus = "reserved"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDone      OrderStatus = "done"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsActive reports whether the order still claims its properties
func (s OrderStatus) IsActive() bool {
	return s != OrderStatusCancelled
}

// ReservationLine is one property sold on a reservation order
type ReservationLine struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PropertyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ListingID   uuid.UUID       `gorm:"type:uuid;not null"`
	BuildingID  uuid.UUID       `gorm:"type:uuid;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ReservationLine) TableName() string {
	return "reservation_lines"
}

// ReservationOrder is a customer's claim on one property
// It is the aggregate root for the reservation workflow
type ReservationOrder struct {
	shared.BaseAggregateRoot
	OrderNumber       string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID        *uuid.UUID        `gorm:"type:uuid;index"`
	ProjectName       string            `gorm:"type:varchar(200)"`
	Status            OrderStatus       `gorm:"type:varchar(20);not null;default:'draft';index"`
	Lines             []ReservationLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DepositInvoiceID  *uuid.UUID        `gorm:"type:uuid"`
	DeliveryPickingID *uuid.UUID        `gorm:"type:uuid"`
	ConfirmedAt       *time.Time        `gorm:""`
	CancelledAt       *time.Time        `gorm:""`
	CancelReason      string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReservationOrder) TableName() string {
	return "reservation_orders"
}

// NewReservationOrder creates a draft order; the customer may be assigned later
func NewReservationOrder(orderNumber, projectName string, customerID *uuid.UUID) (*ReservationOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID != nil && *customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be nil")
	}

	order := &ReservationOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		ProjectName:       projectName,
		Status:            OrderStatusDraft,
		Lines:             make([]ReservationLine, 0),
	}

	order.AddDomainEvent(NewReservationOrderCreatedEvent(order))

	return order, nil
}

// CustomerPending reports whether the order still lacks a real customer
func (o *ReservationOrder) CustomerPending() bool {
	return o.CustomerID == nil
}

// AssignCustomer sets the customer on a draft or reserved order
func (o *ReservationOrder) AssignCustomer(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be nil")
	}
	if o.Status != OrderStatusDraft && o.Status != OrderStatusReserved {
		return shared.NewDomainError("INVALID_STATUS", "Customer can only be assigned before confirmation")
	}

	o.CustomerID = &customerID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// HasLineFor reports whether the order already carries a line for the property
func (o *ReservationOrder) HasLineFor(propertyID uuid.UUID) bool {
	for _, line := range o.Lines {
		if line.PropertyID == propertyID {
			return true
		}
	}
	return false
}

// PropertyLine returns the single property line, if any
func (o *ReservationOrder) PropertyLine() *ReservationLine {
	if len(o.Lines) == 0 {
		return nil
	}
	return &o.Lines[0]
}

// AddLine attaches a property to the order
// A reservation order carries at most one property line
func (o *ReservationOrder) AddLine(propertyID, listingID, buildingID uuid.UUID, description string, price decimal.Decimal) error {
	if o.Status != OrderStatusDraft && o.Status != OrderStatusReserved {
		return shared.NewDomainError("INVALID_STATUS", "Lines can only be added before confirmation")
	}
	if o.HasLineFor(propertyID) {
		return shared.NewDomainError("DUPLICATE_LINE", "Order already references this property")
	}
	if len(o.Lines) > 0 {
		return shared.NewDomainError("SINGLE_PROPERTY", "A reservation order carries a single property")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Line price cannot be negative")
	}

	line := ReservationLine{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     o.ID,
		PropertyID:  propertyID,
		ListingID:   listingID,
		BuildingID:  buildingID,
		Description: description,
		Price:       price,
	}
	o.Lines = append(o.Lines, line)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewReservationLineAddedEvent(o, &line))

	return nil
}

// RemoveLine detaches a property from the order
func (o *ReservationOrder) RemoveLine(propertyID uuid.UUID) error {
	if o.Status != OrderStatusDraft && o.Status != OrderStatusReserved {
		return shared.NewDomainError("INVALID_STATUS", "Lines can only be removed before confirmation")
	}

	for i, line := range o.Lines {
		if line.PropertyID == propertyID {
			removed := line
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.UpdatedAt = time.Now()
			o.IncrementVersion()

			o.AddDomainEvent(NewReservationLineRemovedEvent(o, &removed))
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order has no line for this property")
}

// MarkReserved moves a draft order to the reserved status
// Used by the deposit workflow when the deposit invoice is paid
func (o *ReservationOrder) MarkReserved() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Only a draft order can be reserved")
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot reserve an order without lines")
	}

	o.Status = OrderStatusReserved
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Confirm confirms the order; a real customer must be assigned first
func (o *ReservationOrder) Confirm() error {
	if o.Status != OrderStatusDraft && o.Status != OrderStatusReserved {
		return shared.NewDomainError("INVALID_STATUS",
			fmt.Sprintf("Cannot confirm order in status %s", o.Status))
	}
	if o.CustomerPending() {
		return shared.ErrPendingCustomer
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm an order without lines")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewReservationOrderConfirmedEvent(o))

	return nil
}

// MarkDone completes a confirmed order after handover
func (o *ReservationOrder) MarkDone() error {
	if o.Status != OrderStatusConfirmed {
		return shared.NewDomainError("INVALID_STATUS", "Only a confirmed order can be completed")
	}

	o.Status = OrderStatusDone
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewReservationOrderCompletedEvent(o))

	return nil
}

// Cancel cancels the order in any non-terminal status
func (o *ReservationOrder) Cancel(reason string) error {
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Order is already cancelled")
	}
	if o.Status == OrderStatusDone {
		return shared.NewDomainError("INVALID_STATUS", "Cannot cancel a completed order")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewReservationOrderCancelledEvent(o, reason))

	return nil
}

// SetDepositInvoice records the deposit invoice created for this order
func (o *ReservationOrder) SetDepositInvoice(invoiceID uuid.UUID) {
	o.DepositInvoiceID = &invoiceID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetDeliveryPicking records the handover picking created on confirmation
func (o *ReservationOrder) SetDeliveryPicking(pickingID uuid.UUID) {
	o.DeliveryPickingID = &pickingID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Total returns the sum of the line prices
func (o *ReservationOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Price)
	}
	return total
}
