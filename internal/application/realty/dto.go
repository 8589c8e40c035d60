package realty

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/realty"
)

// CreatePropertyRequest is the input for creating a property
type CreatePropertyRequest struct {
	BuildingID  uuid.UUID       `json:"building_id"`
	Name        string          `json:"name"`
	Floor       int             `json:"floor"`
	Area        decimal.Decimal `json:"area"`
	Rooms       int             `json:"rooms"`
	Bathrooms   int             `json:"bathrooms"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// UpdatePropertyRequest is the input for updating a property
type UpdatePropertyRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Rooms       int             `json:"rooms"`
	Bathrooms   int             `json:"bathrooms"`
	Price       decimal.Decimal `json:"price"`
}

// PropertyListFilter narrows property listings
type PropertyListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	BuildingID *uuid.UUID
	State      *realty.PropertyState
	Locked     *bool
}

// PropertyResponse is the outward representation of a property
type PropertyResponse struct {
	ID              uuid.UUID            `json:"id"`
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	BuildingID      uuid.UUID            `json:"building_id"`
	Floor           int                  `json:"floor"`
	Area            decimal.Decimal      `json:"area"`
	Rooms           int                  `json:"rooms"`
	Bathrooms       int                  `json:"bathrooms"`
	Price           decimal.Decimal      `json:"price"`
	Description     string               `json:"description"`
	State           realty.PropertyState `json:"state"`
	Locked          bool                 `json:"locked"`
	LockedByOrderID *uuid.UUID           `json:"locked_by_order_id,omitempty"`
	LockedAt        *time.Time           `json:"locked_at,omitempty"`
	Active          bool                 `json:"active"`
	Version         int                  `json:"version"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ToPropertyResponse converts a property aggregate to its response form
func ToPropertyResponse(p *realty.Property) PropertyResponse {
	return PropertyResponse{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		BuildingID:      p.BuildingID,
		Floor:           p.Floor,
		Area:            p.Area,
		Rooms:           p.Rooms,
		Bathrooms:       p.Bathrooms,
		Price:           p.Price,
		Description:     p.Description,
		State:           p.State,
		Locked:          p.IsLocked(),
		LockedByOrderID: p.LockedByOrderID,
		LockedAt:        p.LockedAt,
		Active:          p.Active,
		Version:         p.GetVersion(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToPropertyResponses converts a slice of properties
func ToPropertyResponses(properties []*realty.Property) []PropertyResponse {
	responses := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		responses[i] = ToPropertyResponse(p)
	}
	return responses
}

// CreateBuildingRequest is the input for creating a building
type CreateBuildingRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	ProjectName string `json:"project_name"`
	Address     string `json:"address"`
}

// BuildingResponse is the outward representation of a building
type BuildingResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ProjectName string    `json:"project_name"`
	Address     string    `json:"address"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToBuildingResponse converts a building aggregate to its response form
func ToBuildingResponse(b *realty.Building) BuildingResponse {
	return BuildingResponse{
		ID:          b.ID,
		Code:        b.Code,
		Name:        b.Name,
		ProjectName: b.ProjectName,
		Address:     b.Address,
		Active:      b.Active,
		CreatedAt:   b.CreatedAt,
	}
}
