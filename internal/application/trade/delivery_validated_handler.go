package trade

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/billing"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/trade"
)

// DeliveryValidatedHandler reacts to validated handover pickings
// Under the delivery policy the handover marks the properties sold and
// completes the order
type DeliveryValidatedHandler struct {
	service *ReservationService
	policy  WorkflowPolicy
	logger  *zap.Logger
}

// NewDeliveryValidatedHandler creates a new DeliveryValidatedHandler
func NewDeliveryValidatedHandler(service *ReservationService, policy WorkflowPolicy, logger *zap.Logger) *DeliveryValidatedHandler {
	return &DeliveryValidatedHandler{service: service, policy: policy, logger: logger}
}

// EventTypes returns the event types this handler processes
func (h *DeliveryValidatedHandler) EventTypes() []string {
	return []string{billing.EventTypeDeliveryValidated}
}

// Handle processes a DeliveryValidatedEvent
func (h *DeliveryValidatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.policy != PolicyDelivery {
		return nil
	}

	validated, ok := event.(*billing.DeliveryValidatedEvent)
	if !ok {
		return nil
	}

	order, err := h.service.FindByOrderNumber(ctx, validated.OrderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("validated delivery references unknown order",
				zap.String("order_number", validated.OrderNumber))
			return nil
		}
		return err
	}
	if !order.Status.IsActive() {
		return nil
	}

	h.logger.Info("handover validated, marking properties sold",
		zap.String("order_number", order.OrderNumber))

	if err := h.service.MarkOrderSold(ctx, order); err != nil {
		return err
	}

	if order.Status == trade.OrderStatusConfirmed {
		if err := order.MarkDone(); err != nil {
			return err
		}
		return h.service.SaveOrder(ctx, order)
	}
	return nil
}
