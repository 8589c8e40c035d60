package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingbridge "github.com/realty/backend/internal/infrastructure/billing"
)

// BillingHandler exposes the engine callback endpoints of the billing bridge
// External invoicing and delivery engines call these to report status changes
type BillingHandler struct {
	BaseHandler
	bridge *billingbridge.Bridge
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(bridge *billingbridge.Bridge) *BillingHandler {
	return &BillingHandler{bridge: bridge}
}

// PostInvoice reports that an invoice was posted
func (h *BillingHandler) PostInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.bridge.PostInvoice(c.Request.Context(), invoiceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// PayInvoice reports that an invoice was paid
func (h *BillingHandler) PayInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.bridge.PayInvoice(c.Request.Context(), invoiceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ValidatePicking reports that a handover picking was validated
func (h *BillingHandler) ValidatePicking(c *gin.Context) {
	pickingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid picking ID format")
		return
	}

	if err := h.bridge.ValidatePicking(c.Request.Context(), pickingID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all billing callback routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	callbacks := rg.Group("/billing/callback")
	{
		callbacks.POST("/invoices/:id/posted", h.PostInvoice)
		callbacks.POST("/invoices/:id/paid", h.PayInvoice)
		callbacks.POST("/pickings/:id/validated", h.ValidatePicking)
	}
}
