package catalog_repo

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// LocationChecker resolves location existence against the region and
// point-of-sale catalogs. The central depot is a singleton and always exists.
type LocationChecker struct {
	regions      *RegionRepo
	pointsOfSale *PointOfSaleRepo
}

var _ ledger.LocationChecker = (*LocationChecker)(nil)

// NewLocationChecker creates a new location checker.
func NewLocationChecker(regions *RegionRepo, pointsOfSale *PointOfSaleRepo) *LocationChecker {
	return &LocationChecker{regions: regions, pointsOfSale: pointsOfSale}
}

// LocationExists reports whether the location refers to a live catalog row.
func (c *LocationChecker) LocationExists(ctx context.Context, loc entity.Location) (bool, error) {
	switch loc.Kind {
	case entity.LocationKindCentralDepot:
		return true, nil
	case entity.LocationKindRegion:
		return c.regions.Exists(ctx, loc.ID)
	case entity.LocationKindPointOfSale:
		return c.pointsOfSale.Exists(ctx, loc.ID)
	}
	return false, nil
}
