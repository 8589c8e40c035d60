package realty

import (
	"strings"
	"time"

	"github.com/realty/backend/internal/domain/shared"
)

// Building groups properties under one physical construction
// It is the aggregate root for building-related operations
type Building struct {
	shared.BaseAggregateRoot
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(200);not null"`
	ProjectName string `gorm:"type:varchar(200)"`
	Address     string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Building) TableName() string {
	return "buildings"
}

// NewBuilding creates a new building
func NewBuilding(code, name, projectName string) (*Building, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Building code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewDomainError("INVALID_CODE", "Building code cannot exceed 20 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Building name cannot be empty")
	}

	return &Building{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		ProjectName:       projectName,
		Active:            true,
	}, nil
}

// Update updates the building's basic information
func (b *Building) Update(name, projectName, address string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Building name cannot be empty")
	}

	b.Name = name
	b.ProjectName = projectName
	b.Address = address
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}

// Deactivate soft-deletes the building
// Callers must deactivate the building's properties as well
func (b *Building) Deactivate() error {
	if !b.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Building is already inactive")
	}

	b.Active = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}
