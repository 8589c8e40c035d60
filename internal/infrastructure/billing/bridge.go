package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/billing"
	"github.com/realty/backend/internal/domain/shared"
)

// Bridge is the in-process stand-in for the external invoicing and delivery
// engines. It issues invoice and picking IDs on request and turns the engine
// callbacks into domain events on the bus
type Bridge struct {
	mu        sync.RWMutex
	invoices  map[uuid.UUID]*invoiceRecord
	pickings  map[uuid.UUID]*pickingRecord
	publisher shared.EventPublisher
	logger    *zap.Logger
}

type invoiceRecord struct {
	OrderNumber string
	CustomerID  uuid.UUID
	Amount      decimal.Decimal
	IsDeposit   bool
	Status      billing.InvoiceStatus
}

type pickingRecord struct {
	OrderNumber string
	PropertyID  uuid.UUID
	Status      billing.PickingStatus
}

// NewBridge creates a new billing bridge
func NewBridge(logger *zap.Logger) *Bridge {
	return &Bridge{
		invoices: make(map[uuid.UUID]*invoiceRecord),
		pickings: make(map[uuid.UUID]*pickingRecord),
		logger:   logger.Named("billing_bridge"),
	}
}

// SetEventPublisher sets the event publisher used for engine callbacks
func (b *Bridge) SetEventPublisher(publisher shared.EventPublisher) {
	b.publisher = publisher
}

// CreateInvoice registers a draft invoice and returns its ID
func (b *Bridge) CreateInvoice(orderNumber string, customerID uuid.UUID, amount decimal.Decimal, isDeposit bool) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	invoiceID := uuid.New()
	b.invoices[invoiceID] = &invoiceRecord{
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Amount:      amount,
		IsDeposit:   isDeposit,
		Status:      billing.InvoiceStatusDraft,
	}

	b.logger.Info("invoice created",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("order_number", orderNumber),
		zap.String("amount", amount.StringFixed(2)),
		zap.Bool("is_deposit", isDeposit))
	return invoiceID, nil
}

// InvoiceStatus reports the current status of an invoice
func (b *Bridge) InvoiceStatus(invoiceID uuid.UUID) (billing.InvoiceStatus, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.invoices[invoiceID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return record.Status, nil
}

// CreatePicking registers a draft handover picking and returns its ID
func (b *Bridge) CreatePicking(orderNumber string, propertyID uuid.UUID) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pickingID := uuid.New()
	b.pickings[pickingID] = &pickingRecord{
		OrderNumber: orderNumber,
		PropertyID:  propertyID,
		Status:      billing.PickingStatusDraft,
	}

	b.logger.Info("picking created",
		zap.String("picking_id", pickingID.String()),
		zap.String("order_number", orderNumber))
	return pickingID, nil
}

// PostInvoice marks an invoice as posted and publishes the callback event
func (b *Bridge) PostInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	b.mu.Lock()
	record, ok := b.invoices[invoiceID]
	if !ok {
		b.mu.Unlock()
		return shared.ErrNotFound
	}
	if record.Status != billing.InvoiceStatusDraft {
		b.mu.Unlock()
		return shared.NewDomainError("INVALID_STATE", "Invoice is not in draft status")
	}
	record.Status = billing.InvoiceStatusPosted
	event := billing.NewInvoicePostedEvent(invoiceID, record.OrderNumber, record.Amount, record.IsDeposit)
	b.mu.Unlock()

	return b.publish(ctx, event)
}

// PayInvoice marks an invoice as paid and publishes the callback event
// A draft invoice is posted implicitly, matching engines that report only
// the terminal payment
func (b *Bridge) PayInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	b.mu.Lock()
	record, ok := b.invoices[invoiceID]
	if !ok {
		b.mu.Unlock()
		return shared.ErrNotFound
	}
	if record.Status == billing.InvoiceStatusPaid {
		b.mu.Unlock()
		return nil
	}
	if record.Status == billing.InvoiceStatusCancelled {
		b.mu.Unlock()
		return shared.NewDomainError("INVALID_STATE", "Invoice is cancelled")
	}
	record.Status = billing.InvoiceStatusPaid
	event := billing.NewInvoicePaidEvent(invoiceID, record.OrderNumber, record.Amount, record.IsDeposit)
	b.mu.Unlock()

	return b.publish(ctx, event)
}

// ValidatePicking marks a picking as done and publishes the callback event
func (b *Bridge) ValidatePicking(ctx context.Context, pickingID uuid.UUID) error {
	b.mu.Lock()
	record, ok := b.pickings[pickingID]
	if !ok {
		b.mu.Unlock()
		return shared.ErrNotFound
	}
	if record.Status == billing.PickingStatusDone {
		b.mu.Unlock()
		return nil
	}
	record.Status = billing.PickingStatusDone
	event := billing.NewDeliveryValidatedEvent(pickingID, record.OrderNumber)
	b.mu.Unlock()

	return b.publish(ctx, event)
}

func (b *Bridge) publish(ctx context.Context, event shared.DomainEvent) error {
	if b.publisher == nil {
		b.logger.Warn("billing event dropped, no publisher configured",
			zap.String("event_type", event.EventType()))
		return nil
	}
	return b.publisher.Publish(ctx, event)
}

var (
	_ billing.InvoicingGateway = (*Bridge)(nil)
	_ billing.DeliveryGateway  = (*Bridge)(nil)
)
