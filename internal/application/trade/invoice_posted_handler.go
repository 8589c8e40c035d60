package trade

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/billing"
	"github.com/realty/backend/internal/domain/shared"
)

// InvoicePostedHandler reacts to posted invoices from the invoicing engine
// Under the immediate policy a posted invoice marks the order's properties sold
type InvoicePostedHandler struct {
	service *ReservationService
	policy  WorkflowPolicy
	logger  *zap.Logger
}

// NewInvoicePostedHandler creates a new InvoicePostedHandler
func NewInvoicePostedHandler(service *ReservationService, policy WorkflowPolicy, logger *zap.Logger) *InvoicePostedHandler {
	return &InvoicePostedHandler{service: service, policy: policy, logger: logger}
}

// EventTypes returns the event types this handler processes
func (h *InvoicePostedHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePosted}
}

// Handle processes an InvoicePostedEvent
func (h *InvoicePostedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.policy != PolicyImmediate {
		return nil
	}

	posted, ok := event.(*billing.InvoicePostedEvent)
	if !ok {
		return nil
	}

	order, err := h.service.FindByOrderNumber(ctx, posted.OrderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("posted invoice references unknown order",
				zap.String("order_number", posted.OrderNumber))
			return nil
		}
		return err
	}
	if !order.Status.IsActive() {
		return nil
	}

	h.logger.Info("invoice posted, marking properties sold",
		zap.String("order_number", order.OrderNumber),
		zap.String("invoice_id", posted.InvoiceID.String()))

	return h.service.MarkOrderSold(ctx, order)
}
