package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/trade"
)

// WorkflowPolicy selects when a sold property becomes sold
// Exactly one policy is active, chosen in configuration
type WorkflowPolicy string

const (
	// PolicyImmediate marks properties sold as soon as the invoice is posted
	PolicyImmediate WorkflowPolicy = "immediate"
	// PolicyDeposit runs the deposit-then-final-invoice workflow
	PolicyDeposit WorkflowPolicy = "deposit"
	// PolicyDelivery marks properties sold when the handover is validated
	PolicyDelivery WorkflowPolicy = "delivery"
)

// Valid reports whether the policy is one of the known values
func (p WorkflowPolicy) Valid() bool {
	switch p {
	case PolicyImmediate, PolicyDeposit, PolicyDelivery:
		return true
	}
	return false
}

// CreateOrderRequest is the input for creating a reservation order
type CreateOrderRequest struct {
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	ProjectName string     `json:"project_name"`
}

// ReservationLineResponse is the outward representation of an order line
type ReservationLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	ListingID   uuid.UUID       `json:"listing_id"`
	BuildingID  uuid.UUID       `json:"building_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// OrderResponse is the outward representation of a reservation order
type OrderResponse struct {
	ID                uuid.UUID                 `json:"id"`
	OrderNumber       string                    `json:"order_number"`
	CustomerID        *uuid.UUID                `json:"customer_id,omitempty"`
	CustomerPending   bool                      `json:"customer_pending"`
	ProjectName       string                    `json:"project_name"`
	Status            trade.OrderStatus         `json:"status"`
	Lines             []ReservationLineResponse `json:"lines"`
	Total             decimal.Decimal           `json:"total"`
	DepositInvoiceID  *uuid.UUID                `json:"deposit_invoice_id,omitempty"`
	DeliveryPickingID *uuid.UUID                `json:"delivery_picking_id,omitempty"`
	ConfirmedAt       *time.Time                `json:"confirmed_at,omitempty"`
	CancelledAt       *time.Time                `json:"cancelled_at,omitempty"`
	CancelReason      string                    `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// ToOrderResponse converts an order aggregate to its response form
func ToOrderResponse(o *trade.ReservationOrder) OrderResponse {
	lines := make([]ReservationLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = ReservationLineResponse{
			ID:          line.ID,
			PropertyID:  line.PropertyID,
			ListingID:   line.ListingID,
			BuildingID:  line.BuildingID,
			Description: line.Description,
			Price:       line.Price,
		}
	}
	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		CustomerPending:   o.CustomerPending(),
		ProjectName:       o.ProjectName,
		Status:            o.Status,
		Lines:             lines,
		Total:             o.Total(),
		DepositInvoiceID:  o.DepositInvoiceID,
		DeliveryPickingID: o.DeliveryPickingID,
		ConfirmedAt:       o.ConfirmedAt,
		CancelledAt:       o.CancelledAt,
		CancelReason:      o.CancelReason,
		CreatedAt:         o.CreatedAt,
	}
}
