package trade

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/billing"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/trade"
)

// InvoicePaidHandler reacts to paid invoices from the invoicing engine
// Under the deposit policy a paid deposit confirms the reservation and a paid
// final invoice marks the properties sold
type InvoicePaidHandler struct {
	service *ReservationService
	policy  WorkflowPolicy
	logger  *zap.Logger
}

// NewInvoicePaidHandler creates a new InvoicePaidHandler
func NewInvoicePaidHandler(service *ReservationService, policy WorkflowPolicy, logger *zap.Logger) *InvoicePaidHandler {
	return &InvoicePaidHandler{service: service, policy: policy, logger: logger}
}

// EventTypes returns the event types this handler processes
func (h *InvoicePaidHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePaid}
}

// Handle processes an InvoicePaidEvent
func (h *InvoicePaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.policy != PolicyDeposit {
		return nil
	}

	paid, ok := event.(*billing.InvoicePaidEvent)
	if !ok {
		return nil
	}

	order, err := h.service.FindByOrderNumber(ctx, paid.OrderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("paid invoice references unknown order",
				zap.String("order_number", paid.OrderNumber))
			return nil
		}
		return err
	}
	if !order.Status.IsActive() {
		return nil
	}

	if paid.IsDeposit {
		if order.Status != trade.OrderStatusDraft {
			return nil
		}
		h.logger.Info("deposit paid, reserving order",
			zap.String("order_number", order.OrderNumber))
		if err := order.MarkReserved(); err != nil {
			return err
		}
		return h.service.SaveOrder(ctx, order)
	}

	h.logger.Info("final invoice paid, marking properties sold",
		zap.String("order_number", order.OrderNumber))
	return h.service.MarkOrderSold(ctx, order)
}
