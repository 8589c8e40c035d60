package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	realtyapp "github.com/realty/backend/internal/application/realty"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/interfaces/http/dto"
)

// PropertyHandler handles property-related API endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *realtyapp.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *realtyapp.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// CreatePropertyRequest represents a request to create a new property
// An empty or default name gets a generated unit code
type CreatePropertyRequest struct {
	BuildingID  string  `json:"building_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"max=200"`
	Floor       int     `json:"floor" binding:"min=0"`
	Area        float64 `json:"area" binding:"required,gt=0"`
	Rooms       int     `json:"rooms" binding:"min=0"`
	Bathrooms   int     `json:"bathrooms" binding:"min=0"`
	Price       float64 `json:"price" binding:"min=0"`
	Description string  `json:"description"`
}

// UpdatePropertyRequest represents a request to update a property
type UpdatePropertyRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description"`
	Rooms       int     `json:"rooms" binding:"min=0"`
	Bathrooms   int     `json:"bathrooms" binding:"min=0"`
	Price       float64 `json:"price" binding:"min=0"`
}

// Create creates a new property
func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	buildingID, err := uuid.Parse(req.BuildingID)
	if err != nil {
		h.BadRequest(c, "Invalid building ID format")
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), realtyapp.CreatePropertyRequest{
		BuildingID:  buildingID,
		Name:        req.Name,
		Floor:       req.Floor,
		Area:        decimal.NewFromFloat(req.Area),
		Rooms:       req.Rooms,
		Bathrooms:   req.Bathrooms,
		Price:       decimal.NewFromFloat(req.Price),
		Description: req.Description,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, property)
}

// Update updates a property's descriptive fields
func (h *PropertyHandler) Update(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), propertyID, realtyapp.UpdatePropertyRequest{
		Name:        req.Name,
		Description: req.Description,
		Rooms:       req.Rooms,
		Bathrooms:   req.Bathrooms,
		Price:       decimal.NewFromFloat(req.Price),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, property)
}

// GetByID retrieves a property by ID
func (h *PropertyHandler) GetByID(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	property, err := h.propertyService.GetByID(c.Request.Context(), propertyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, property)
}

// List retrieves properties with filtering and pagination
func (h *PropertyHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := realtyapp.PropertyListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}

	if v := c.Query("building_id"); v != "" {
		buildingID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid building ID format")
			return
		}
		filter.BuildingID = &buildingID
	}
	if v := c.Query("state"); v != "" {
		state := realty.PropertyState(v)
		filter.State = &state
	}
	if v := c.Query("locked"); v != "" {
		locked := v == "true"
		filter.Locked = &locked
	}

	page, err := h.propertyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Deactivate soft-deletes a property and detaches its mirror
func (h *PropertyHandler) Deactivate(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	if err := h.propertyService.Deactivate(c.Request.Context(), propertyID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Reconcile resyncs every property onto its mirror listing
func (h *PropertyHandler) Reconcile(c *gin.Context) {
	count, err := h.propertyService.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"reconciled": count})
}

// RegisterRoutes registers all property routes
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/realty/properties")
	{
		properties.POST("", h.Create)
		properties.GET("", h.List)
		properties.GET("/:id", h.GetByID)
		properties.PUT("/:id", h.Update)
		properties.DELETE("/:id", h.Deactivate)
		properties.POST("/reconcile", h.Reconcile)
	}
}
