// Package pointofsale provides the PointOfSale catalog.
package pointofsale

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain"
)

// PointOfSale is a selling location inside a region.
type PointOfSale struct {
	entity.BaseCatalog

	Name     string `db:"name" json:"name"`
	RegionID id.ID  `db:"region_id" json:"regionId"`
	Address  string `db:"address" json:"address,omitempty"`
}

// New creates a point of sale with generated id.
func New(name string, regionID id.ID) *PointOfSale {
	return &PointOfSale{
		BaseCatalog: entity.NewBaseCatalog(),
		Name:        name,
		RegionID:    regionID,
	}
}

// Validate implements entity.Validatable.
func (p *PointOfSale) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(p.RegionID) {
		return apperror.NewValidation("region is required").
			WithDetail("field", "regionId")
	}
	return nil
}

// Repository defines persistence operations for points of sale.
// ListIDsByRegion backs the role-scope expansion for region admins.
type Repository interface {
	Create(ctx context.Context, p *PointOfSale) error
	GetByID(ctx context.Context, posID id.ID) (*PointOfSale, error)
	Update(ctx context.Context, p *PointOfSale) error
	SetDeletionMark(ctx context.Context, posID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PointOfSale], error)
	ListIDsByRegion(ctx context.Context, regionID id.ID) ([]id.ID, error)
	RegionMap(ctx context.Context) (map[id.ID]id.ID, error)
	Exists(ctx context.Context, posID id.ID) (bool, error)
}

// ListFilter for filtering points of sale.
type ListFilter struct {
	domain.ListFilter

	RegionID *id.ID
}
