package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appRealty "github.com/realty/backend/internal/application/realty"
	"github.com/realty/backend/internal/domain/billing"
	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/trade"
)

// DepositRatio is the share of the price invoiced as a deposit
var DepositRatio = decimal.NewFromFloat(0.10)

// ReservationService drives the reservation workflow: binding a property to
// an order, confirmation, cancellation and the invoicing hand-offs
type ReservationService struct {
	orderRepo      trade.ReservationOrderRepository
	propertyRepo   realty.PropertyRepository
	listingRepo    catalog.ListingRepository
	buildingRepo   realty.BuildingRepository
	sync           *appRealty.MirrorSyncService
	invoicing      billing.InvoicingGateway
	delivery       billing.DeliveryGateway
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	orderRepo trade.ReservationOrderRepository,
	propertyRepo realty.PropertyRepository,
	listingRepo catalog.ListingRepository,
	buildingRepo realty.BuildingRepository,
	sync *appRealty.MirrorSyncService,
	invoicing billing.InvoicingGateway,
	delivery billing.DeliveryGateway,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		orderRepo:    orderRepo,
		propertyRepo: propertyRepo,
		listingRepo:  listingRepo,
		buildingRepo: buildingRepo,
		sync:         sync,
		invoicing:    invoicing,
		delivery:     delivery,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder creates a draft reservation order
// The customer may be assigned later, but confirmation requires one
func (s *ReservationService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewReservationOrder(orderNumber, req.ProjectName, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// AssignCustomer assigns the customer to a pending order
func (s *ReservationService) AssignCustomer(ctx context.Context, orderID, customerID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := order.AssignCustomer(customerID); err != nil {
		return err
	}
	return s.orderRepo.Save(ctx, order)
}

// AddPropertyLine binds a property to the order: the lock is acquired and the
// ownership re-checked inside the transaction that writes the line, so two
// competing orders can never both hold the same unit
func (s *ReservationService) AddPropertyLine(ctx context.Context, orderID, propertyID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var property *realty.Property
	err = s.propertyRepo.Transaction(ctx, func(txCtx context.Context) error {
		// re-read inside the transaction so the lock check sees current state
		property, err = s.propertyRepo.FindByID(txCtx, propertyID)
		if err != nil {
			return err
		}
		if !property.Active {
			return shared.NewDomainError("INACTIVE", "Property is no longer active")
		}

		if property.IsLocked() && !property.IsLockedBy(order.ID) {
			holder, err := s.orderRepo.FindByID(txCtx, *property.LockedByOrderID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if holder != nil && holder.Status.IsActive() {
				return shared.ErrLockConflict
			}
			// the holding order is cancelled or gone, reclaim the lock
			property.ForceReleaseLock()
		}

		if err := property.StartReservation(order.ID); err != nil {
			return err
		}

		description, listingID, err := s.lineSnapshot(txCtx, property)
		if err != nil {
			return err
		}
		if err := order.AddLine(property.ID, listingID, property.BuildingID, description, property.Price); err != nil {
			return err
		}

		if err := s.propertyRepo.Save(txCtx, property); err != nil {
			return err
		}
		return s.orderRepo.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.sync.SyncPropertyToListing(ctx, property, appRealty.OriginOrder); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, property)
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// RemovePropertyLine detaches a property from the order and releases the lock
// The property reverts to available only when no other active order still
// references it
func (s *ReservationService) RemovePropertyLine(ctx context.Context, orderID, propertyID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.RemoveLine(propertyID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.releaseProperty(ctx, property, order.ID); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// Confirm confirms the order: properties move to reserved, locks are released
// and the handover picking is requested from the delivery engine
func (s *ReservationService) Confirm(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Confirm(); err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		property, err := s.propertyRepo.FindByID(ctx, line.PropertyID)
		if err != nil {
			return nil, err
		}
		if property.State != realty.PropertyStateReserved {
			if err := property.MarkReserved(); err != nil {
				return nil, err
			}
		}
		property.ReleaseLock(order.ID)
		if err := s.propertyRepo.Save(ctx, property); err != nil {
			return nil, err
		}
		if err := s.sync.SyncPropertyToListing(ctx, property, appRealty.OriginOrder); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, property)
	}

	if s.delivery != nil {
		if line := order.PropertyLine(); line != nil {
			pickingID, err := s.delivery.CreatePicking(order.OrderNumber, line.PropertyID)
			if err != nil {
				s.logger.Error("delivery picking creation failed",
					zap.String("order_number", order.OrderNumber), zap.Error(err))
			} else {
				order.SetDeliveryPicking(pickingID)
			}
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// Cancel cancels the order, unconditionally releasing its locks and reverting
// its properties to available when nothing else claims them
func (s *ReservationService) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		property, err := s.propertyRepo.FindByID(ctx, line.PropertyID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if err := s.releaseProperty(ctx, property, order.ID); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// CancelSold unwinds a sold property: related active orders are cancelled
// best-effort and the property goes back on the market
func (s *ReservationService) CancelSold(ctx context.Context, propertyID uuid.UUID, reason string) error {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if property.State != realty.PropertyStateSold {
		return shared.NewDomainError("NOT_SOLD", "Property is not sold")
	}

	orders, err := s.orderRepo.FindActiveByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	for _, order := range orders {
		if order.DepositInvoiceID != nil && s.invoicing != nil {
			status, err := s.invoicing.InvoiceStatus(*order.DepositInvoiceID)
			if err == nil && (status == billing.InvoiceStatusPosted || status == billing.InvoiceStatusPaid) {
				s.logger.Warn("cancelling sold property with a posted invoice",
					zap.String("order_number", order.OrderNumber),
					zap.String("invoice_id", order.DepositInvoiceID.String()))
			}
		}
		if err := order.Cancel(reason); err != nil {
			s.logger.Warn("could not cancel related order",
				zap.String("order_number", order.OrderNumber), zap.Error(err))
			continue
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			return err
		}
		property.ReleaseLock(order.ID)
		s.publishEvents(ctx, order)
	}

	if err := property.MarkAvailable(); err != nil {
		return err
	}
	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return err
	}
	if err := s.sync.SyncPropertyToListing(ctx, property, appRealty.OriginOrder); err != nil {
		return err
	}

	s.publishEvents(ctx, property)
	return nil
}

// CreateDepositInvoice requests the 10% deposit invoice for an order
func (s *ReservationService) CreateDepositInvoice(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}
	if order.CustomerPending() {
		return uuid.Nil, shared.ErrPendingCustomer
	}
	if len(order.Lines) == 0 {
		return uuid.Nil, shared.NewDomainError("EMPTY_ORDER", "Cannot invoice an order without lines")
	}
	if order.DepositInvoiceID != nil {
		return *order.DepositInvoiceID, nil
	}
	if s.invoicing == nil {
		return uuid.Nil, shared.NewDomainError("NO_INVOICING", "Invoicing engine is not configured")
	}

	amount := order.Total().Mul(DepositRatio).Round(2)
	invoiceID, err := s.invoicing.CreateInvoice(order.OrderNumber, *order.CustomerID, amount, true)
	if err != nil {
		return uuid.Nil, err
	}

	order.SetDepositInvoice(invoiceID)
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return uuid.Nil, err
	}
	return invoiceID, nil
}

// CreateFinalInvoice requests the remaining 90% invoice for a confirmed order
func (s *ReservationService) CreateFinalInvoice(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}
	if order.Status != trade.OrderStatusConfirmed {
		return uuid.Nil, shared.NewDomainError("INVALID_STATUS", "Final invoice requires a confirmed order")
	}
	if s.invoicing == nil {
		return uuid.Nil, shared.NewDomainError("NO_INVOICING", "Invoicing engine is not configured")
	}

	amount := order.Total().Mul(decimal.NewFromInt(1).Sub(DepositRatio)).Round(2)
	return s.invoicing.CreateInvoice(order.OrderNumber, *order.CustomerID, amount, false)
}

// GetByID retrieves an order by ID
func (s *ReservationService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with pagination
func (s *ReservationService) List(ctx context.Context, page, pageSize int, search string, status *trade.OrderStatus) (shared.Paginated[OrderResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.Search = search
	if status != nil {
		filter.Filters["status"] = string(*status)
	}

	result, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	responses := make([]OrderResponse, len(result.Items))
	for i, o := range result.Items {
		responses[i] = ToOrderResponse(o)
	}
	return shared.Paginated[OrderResponse]{
		Items:      responses,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// MarkOrderSold transitions all the order's properties to sold
// Shared by the post-sale event handlers
func (s *ReservationService) MarkOrderSold(ctx context.Context, order *trade.ReservationOrder) error {
	for _, line := range order.Lines {
		property, err := s.propertyRepo.FindByID(ctx, line.PropertyID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("sold order references missing property",
					zap.String("order_number", order.OrderNumber),
					zap.String("property_id", line.PropertyID.String()))
				continue
			}
			return err
		}
		if property.State == realty.PropertyStateSold {
			continue
		}
		if err := property.MarkSold(); err != nil {
			return err
		}
		property.ReleaseLock(order.ID)
		if err := s.propertyRepo.Save(ctx, property); err != nil {
			return err
		}
		if err := s.sync.SyncPropertyToListing(ctx, property, appRealty.OriginOrder); err != nil {
			return err
		}
		s.publishEvents(ctx, property)
	}
	return nil
}

// FindByOrderNumber retrieves the order aggregate for the event handlers
func (s *ReservationService) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.ReservationOrder, error) {
	return s.orderRepo.FindByOrderNumber(ctx, orderNumber)
}

// SaveOrder persists an order mutated by an event handler
func (s *ReservationService) SaveOrder(ctx context.Context, order *trade.ReservationOrder) error {
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return err
	}
	s.publishEvents(ctx, order)
	return nil
}

// releaseProperty releases the order's lock and reverts the property to
// available when no other active order still references it
func (s *ReservationService) releaseProperty(ctx context.Context, property *realty.Property, orderID uuid.UUID) error {
	property.ReleaseLock(orderID)

	others, err := s.orderRepo.FindActiveByProperty(ctx, property.ID)
	if err != nil {
		return err
	}
	stillClaimed := false
	for _, other := range others {
		if other.ID != orderID {
			stillClaimed = true
			break
		}
	}

	if !stillClaimed &&
		(property.State == realty.PropertyStateInProgress || property.State == realty.PropertyStateReserved) {
		if err := property.MarkAvailable(); err != nil {
			return err
		}
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return err
	}
	if err := s.sync.SyncPropertyToListing(ctx, property, appRealty.OriginOrder); err != nil {
		return err
	}
	s.publishEvents(ctx, property)
	return nil
}

// lineSnapshot builds the descriptive snapshot stored on the order line
func (s *ReservationService) lineSnapshot(ctx context.Context, property *realty.Property) (string, uuid.UUID, error) {
	building, err := s.buildingRepo.FindByID(ctx, property.BuildingID)
	if err != nil {
		return "", uuid.Nil, err
	}

	listingID := uuid.Nil
	if listing, err := s.listingRepo.FindByPropertyID(ctx, property.ID); err == nil {
		listingID = listing.ID
	} else if !errors.Is(err, shared.ErrNotFound) {
		return "", uuid.Nil, err
	}

	description := fmt.Sprintf("Projet: %s | Immeuble: %s | Étage: %d | Superficie: %s m² | Pièces: %d | Salles de bain: %d",
		building.ProjectName, building.Name, property.Floor,
		property.Area.StringFixed(2), property.Rooms, property.Bathrooms)

	return description, listingID, nil
}

// publishEvents publishes and clears an aggregate's pending events
func (s *ReservationService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		aggregate.ClearDomainEvents()
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
