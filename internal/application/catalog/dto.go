package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/catalog"
)

// CreateListingRequest is the input for creating a listing
type CreateListingRequest struct {
	Kind        catalog.ListingKind `json:"kind"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	Description string              `json:"description"`
	BuildingID  *uuid.UUID          `json:"building_id,omitempty"`
	Floor       int                 `json:"floor"`
	Area        decimal.Decimal     `json:"area"`
	Rooms       int                 `json:"rooms"`
	Bathrooms   int                 `json:"bathrooms"`
}

// UpdateListingRequest is the input for updating a listing
type UpdateListingRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// ListingListFilter narrows listing queries
type ListingListFilter struct {
	Page     int
	PageSize int
	Search   string
	Kind     *catalog.ListingKind
	State    *catalog.ListingState
	Sellable *bool
}

// ListingResponse is the outward representation of a listing
type ListingResponse struct {
	ID          uuid.UUID            `json:"id"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Kind        catalog.ListingKind  `json:"kind"`
	State       catalog.ListingState `json:"state"`
	Sellable    bool                 `json:"sellable"`
	PropertyID  *uuid.UUID           `json:"property_id,omitempty"`
	BuildingID  *uuid.UUID           `json:"building_id,omitempty"`
	ProjectName string               `json:"project_name"`
	Floor       int                  `json:"floor"`
	Area        decimal.Decimal      `json:"area"`
	Rooms       int                  `json:"rooms"`
	Bathrooms   int                  `json:"bathrooms"`
	Price       decimal.Decimal      `json:"price"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ToListingResponse converts a listing aggregate to its response form
func ToListingResponse(l *catalog.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Code:        l.Code,
		Name:        l.Name,
		Kind:        l.Kind,
		State:       l.State,
		Sellable:    l.Sellable,
		PropertyID:  l.PropertyID,
		BuildingID:  l.BuildingID,
		ProjectName: l.ProjectName,
		Floor:       l.Floor,
		Area:        l.Area,
		Rooms:       l.Rooms,
		Bathrooms:   l.Bathrooms,
		Price:       l.Price,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToListingResponses converts a slice of listings
func ToListingResponses(listings []*catalog.Listing) []ListingResponse {
	responses := make([]ListingResponse, len(listings))
	for i, l := range listings {
		responses[i] = ToListingResponse(l)
	}
	return responses
}
