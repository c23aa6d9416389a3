package catalog_repo

import (
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/region"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
)

const regionTable = "cat_regions"

// RegionRepo implements region.Repository.
type RegionRepo struct {
	*BaseCatalogRepo[*region.Region]
}

// NewRegionRepo creates a new region repository.
func NewRegionRepo(txManager *postgres.TxManager) *RegionRepo {
	return &RegionRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*region.Region](
			txManager,
			regionTable,
			postgres.ExtractDBColumns[region.Region](),
			func() *region.Region { return &region.Region{} },
		),
	}
}
