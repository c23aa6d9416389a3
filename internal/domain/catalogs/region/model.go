// Package region provides the Region catalog.
package region

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain"
)

// Region is an organizational grouping of points of sale.
type Region struct {
	entity.BaseCatalog

	Name string `db:"name" json:"name"`
}

// New creates a region with generated id.
func New(name string) *Region {
	return &Region{
		BaseCatalog: entity.NewBaseCatalog(),
		Name:        name,
	}
}

// Validate implements entity.Validatable.
func (r *Region) Validate(ctx context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines persistence operations for regions.
type Repository interface {
	Create(ctx context.Context, r *Region) error
	GetByID(ctx context.Context, regionID id.ID) (*Region, error)
	Update(ctx context.Context, r *Region) error
	SetDeletionMark(ctx context.Context, regionID id.ID, marked bool) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Region], error)
	Exists(ctx context.Context, regionID id.ID) (bool, error)
}
