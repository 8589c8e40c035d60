package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/realty/backend/internal/application/catalog"
	"github.com/realty/backend/internal/domain/catalog"
	"github.com/realty/backend/internal/interfaces/http/dto"
)

// ListingHandler handles catalog listing API endpoints
type ListingHandler struct {
	BaseHandler
	listingService *catalogapp.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *catalogapp.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest represents a request to create a new listing
type CreateListingRequest struct {
	Kind        string  `json:"kind" binding:"required,oneof=apartment store equipment"`
	Code        string  `json:"code" binding:"required,min=1,max=50"`
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Price       float64 `json:"price" binding:"min=0"`
	Description string  `json:"description"`
	BuildingID  *string `json:"building_id" binding:"omitempty,uuid"`
	Floor       int     `json:"floor" binding:"min=0"`
	Area        float64 `json:"area" binding:"min=0"`
	Rooms       int     `json:"rooms" binding:"min=0"`
	Bathrooms   int     `json:"bathrooms" binding:"min=0"`
}

// UpdateListingRequest represents a request to update a listing
type UpdateListingRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
}

// Create creates a new listing
func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := catalogapp.CreateListingRequest{
		Kind:        catalog.ListingKind(req.Kind),
		Code:        req.Code,
		Name:        req.Name,
		Price:       decimal.NewFromFloat(req.Price),
		Description: req.Description,
		Floor:       req.Floor,
		Area:        decimal.NewFromFloat(req.Area),
		Rooms:       req.Rooms,
		Bathrooms:   req.Bathrooms,
	}
	if req.BuildingID != nil {
		buildingID, err := uuid.Parse(*req.BuildingID)
		if err != nil {
			h.BadRequest(c, "Invalid building ID format")
			return
		}
		appReq.BuildingID = &buildingID
	}

	listing, err := h.listingService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, listing)
}

// Update updates a listing
func (h *ListingHandler) Update(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), listingID, catalogapp.UpdateListingRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, listing)
}

// GetByID retrieves a listing by ID
func (h *ListingHandler) GetByID(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	listing, err := h.listingService.GetByID(c.Request.Context(), listingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, listing)
}

// List retrieves listings with filtering and pagination
func (h *ListingHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := catalogapp.ListingListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	}
	if v := c.Query("kind"); v != "" {
		kind := catalog.ListingKind(v)
		filter.Kind = &kind
	}
	if v := c.Query("state"); v != "" {
		state := catalog.ListingState(v)
		filter.State = &state
	}
	if v := c.Query("sellable"); v != "" {
		sellable := v == "true"
		filter.Sellable = &sellable
	}

	page, err := h.listingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Block makes a listing unsellable
func (h *ListingHandler) Block(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	if err := h.listingService.Block(c.Request.Context(), listingID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Unblock makes a listing sellable again
func (h *ListingHandler) Unblock(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	if err := h.listingService.Unblock(c.Request.Context(), listingID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all listing routes
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/catalog/listings")
	{
		listings.POST("", h.Create)
		listings.GET("", h.List)
		listings.GET("/:id", h.GetByID)
		listings.PUT("/:id", h.Update)
		listings.POST("/:id/block", h.Block)
		listings.POST("/:id/unblock", h.Unblock)
	}
}
