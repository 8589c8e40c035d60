package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/realty/backend/internal/application/inventory"
)

// InventoryHandler handles stock projection API endpoints
type InventoryHandler struct {
	BaseHandler
	projector *inventoryapp.ProjectorService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(projector *inventoryapp.ProjectorService) *InventoryHandler {
	return &InventoryHandler{projector: projector}
}

// GetQuantity reads the projected on-hand quantity for a listing
func (h *InventoryHandler) GetQuantity(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	qty, err := h.projector.Quantity(c.Request.Context(), listingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"listing_id": listingID, "quantity": qty})
}

// Recompute rewrites the ledger quantity of every listing
func (h *InventoryHandler) Recompute(c *gin.Context) {
	count, err := h.projector.RecomputeAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"recomputed": count})
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.GET("/listings/:id/quantity", h.GetQuantity)
		inv.POST("/recompute", h.Recompute)
	}
}
