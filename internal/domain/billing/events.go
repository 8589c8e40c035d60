package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// InvoiceStatus mirrors the states of the external invoicing engine
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPosted    InvoiceStatus = "posted"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// PickingStatus mirrors the states of the external delivery engine
type PickingStatus string

const (
	PickingStatusDraft PickingStatus = "draft"
	PickingStatusDone  PickingStatus = "done"
)

// Event types published by the billing and delivery bridges
const (
	EventTypeInvoicePosted     = "billing.invoice.posted"
	EventTypeInvoicePaid       = "billing.invoice.paid"
	EventTypeDeliveryValidated = "billing.delivery.validated"
)

// InvoicePostedEvent signals that an invoice for a reservation order was posted
type InvoicePostedEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	IsDeposit   bool            `json:"is_deposit"`
}

// NewInvoicePostedEvent creates a new InvoicePostedEvent
func NewInvoicePostedEvent(invoiceID uuid.UUID, orderNumber string, amount decimal.Decimal, isDeposit bool) *InvoicePostedEvent {
	return &InvoicePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePosted, "Invoice", invoiceID),
		InvoiceID:       invoiceID,
		OrderNumber:     orderNumber,
		Amount:          amount,
		IsDeposit:       isDeposit,
	}
}

// InvoicePaidEvent signals that an invoice for a reservation order was paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	IsDeposit   bool            `json:"is_deposit"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(invoiceID uuid.UUID, orderNumber string, amount decimal.Decimal, isDeposit bool) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", invoiceID),
		InvoiceID:       invoiceID,
		OrderNumber:     orderNumber,
		Amount:          amount,
		IsDeposit:       isDeposit,
	}
}

// DeliveryValidatedEvent signals that the handover picking was validated
type DeliveryValidatedEvent struct {
	shared.BaseDomainEvent
	PickingID   uuid.UUID `json:"picking_id"`
	OrderNumber string    `json:"order_number"`
}

// NewDeliveryValidatedEvent creates a new DeliveryValidatedEvent
func NewDeliveryValidatedEvent(pickingID uuid.UUID, orderNumber string) *DeliveryValidatedEvent {
	return &DeliveryValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryValidated, "DeliveryPicking", pickingID),
		PickingID:       pickingID,
		OrderNumber:     orderNumber,
	}
}

// InvoicingGateway requests invoices from the external invoicing engine
type InvoicingGateway interface {
	// CreateInvoice asks the engine for an invoice and returns its ID
	CreateInvoice(orderNumber string, customerID uuid.UUID, amount decimal.Decimal, isDeposit bool) (uuid.UUID, error)
	// InvoiceStatus reports the current status of an invoice
	InvoiceStatus(invoiceID uuid.UUID) (InvoiceStatus, error)
}

// DeliveryGateway requests handover pickings from the external delivery engine
type DeliveryGateway interface {
	// CreatePicking asks the engine for a handover picking and returns its ID
	CreatePicking(orderNumber string, propertyID uuid.UUID) (uuid.UUID, error)
}
