package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tradeapp "github.com/realty/backend/internal/application/trade"
	"github.com/realty/backend/internal/domain/trade"
	"github.com/realty/backend/internal/interfaces/http/dto"
)

// ReservationHandler handles reservation order API endpoints
type ReservationHandler struct {
	BaseHandler
	reservationService *tradeapp.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService *tradeapp.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// CreateOrderRequest represents a request to create a reservation order
type CreateOrderRequest struct {
	CustomerID  *string `json:"customer_id" binding:"omitempty,uuid"`
	ProjectName string  `json:"project_name" binding:"max=200"`
}

// AddLineRequest represents a request to bind a property to an order
type AddLineRequest struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
}

// AssignCustomerRequest represents a request to assign the order's customer
type AssignCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CancelSoldRequest represents a request to unwind a sold property
type CancelSoldRequest struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	Reason     string `json:"reason" binding:"max=500"`
}

// Create creates a draft reservation order
func (h *ReservationHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := tradeapp.CreateOrderRequest{ProjectName: req.ProjectName}
	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		appReq.CustomerID = &customerID
	}

	order, err := h.reservationService.CreateOrder(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID retrieves an order by ID
func (h *ReservationHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.reservationService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List retrieves orders with filtering and pagination
func (h *ReservationHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var status *trade.OrderStatus
	if v := c.Query("status"); v != "" {
		s := trade.OrderStatus(v)
		status = &s
	}

	page, err := h.reservationService.List(c.Request.Context(), req.Page, req.PageSize, req.Search, status)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddLine binds a property to the order
func (h *ReservationHandler) AddLine(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	order, err := h.reservationService.AddPropertyLine(c.Request.Context(), orderID, propertyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// RemoveLine detaches a property from the order
func (h *ReservationHandler) RemoveLine(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	order, err := h.reservationService.RemovePropertyLine(c.Request.Context(), orderID, propertyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// AssignCustomer assigns the customer to a pending order
func (h *ReservationHandler) AssignCustomer(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req AssignCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	if err := h.reservationService.AssignCustomer(c.Request.Context(), orderID, customerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Confirm confirms the order
func (h *ReservationHandler) Confirm(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.reservationService.Confirm(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel cancels the order and releases its properties
func (h *ReservationHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.reservationService.Cancel(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// CancelSold unwinds a sold property back onto the market
func (h *ReservationHandler) CancelSold(c *gin.Context) {
	var req CancelSoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	if err := h.reservationService.CancelSold(c.Request.Context(), propertyID, req.Reason); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateDepositInvoice requests the deposit invoice for an order
func (h *ReservationHandler) CreateDepositInvoice(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	invoiceID, err := h.reservationService.CreateDepositInvoice(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"invoice_id": invoiceID})
}

// CreateFinalInvoice requests the remaining balance invoice for an order
func (h *ReservationHandler) CreateFinalInvoice(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	invoiceID, err := h.reservationService.CreateFinalInvoice(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"invoice_id": invoiceID})
}

// RegisterRoutes registers all reservation order routes
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/trade/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.POST("/:id/lines", h.AddLine)
		orders.DELETE("/:id/lines/:propertyId", h.RemoveLine)
		orders.POST("/:id/customer", h.AssignCustomer)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/deposit-invoice", h.CreateDepositInvoice)
		orders.POST("/:id/final-invoice", h.CreateFinalInvoice)
	}
	rg.POST("/trade/cancel-sold", h.CancelSold)
}
