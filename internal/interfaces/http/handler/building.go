package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	realtyapp "github.com/realty/backend/internal/application/realty"
	"github.com/realty/backend/internal/interfaces/http/dto"
)

// BuildingHandler handles building-related API endpoints
type BuildingHandler struct {
	BaseHandler
	propertyService *realtyapp.PropertyService
}

// NewBuildingHandler creates a new BuildingHandler
func NewBuildingHandler(propertyService *realtyapp.PropertyService) *BuildingHandler {
	return &BuildingHandler{propertyService: propertyService}
}

// CreateBuildingRequest represents a request to create a new building
type CreateBuildingRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=20"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ProjectName string `json:"project_name" binding:"max=200"`
	Address     string `json:"address" binding:"max=500"`
}

// Create creates a new building
func (h *BuildingHandler) Create(c *gin.Context) {
	var req CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	building, err := h.propertyService.CreateBuilding(c.Request.Context(), realtyapp.CreateBuildingRequest{
		Code:        req.Code,
		Name:        req.Name,
		ProjectName: req.ProjectName,
		Address:     req.Address,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, building)
}

// GetByID retrieves a building by ID
func (h *BuildingHandler) GetByID(c *gin.Context) {
	buildingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid building ID format")
		return
	}

	building, err := h.propertyService.GetBuilding(c.Request.Context(), buildingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, building)
}

// List retrieves buildings with pagination
func (h *BuildingHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.propertyService.ListBuildings(c.Request.Context(), req.Page, req.PageSize, req.Search)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Delete deactivates a building and all its properties
func (h *BuildingHandler) Delete(c *gin.Context) {
	buildingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid building ID format")
		return
	}

	if err := h.propertyService.DeleteBuilding(c.Request.Context(), buildingID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all building routes
func (h *BuildingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	buildings := rg.Group("/realty/buildings")
	{
		buildings.POST("", h.Create)
		buildings.GET("", h.List)
		buildings.GET("/:id", h.GetByID)
		buildings.DELETE("/:id", h.Delete)
	}
}
