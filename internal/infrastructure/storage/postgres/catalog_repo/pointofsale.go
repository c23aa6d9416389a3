package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/pointofsale"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
)

const pointOfSaleTable = "cat_points_of_sale"

// PointOfSaleRepo implements pointofsale.Repository.
type PointOfSaleRepo struct {
	*BaseCatalogRepo[*pointofsale.PointOfSale]
}

// NewPointOfSaleRepo creates a new point of sale repository.
func NewPointOfSaleRepo(txManager *postgres.TxManager) *PointOfSaleRepo {
	return &PointOfSaleRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*pointofsale.PointOfSale](
			txManager,
			pointOfSaleTable,
			postgres.ExtractDBColumns[pointofsale.PointOfSale](),
			func() *pointofsale.PointOfSale { return &pointofsale.PointOfSale{} },
		),
	}
}

// List retrieves points of sale, optionally restricted to a region.
func (r *PointOfSaleRepo) List(ctx context.Context, filter pointofsale.ListFilter) (domain.ListResult[*pointofsale.PointOfSale], error) {
	if filter.RegionID == nil {
		return r.BaseCatalogRepo.List(ctx, filter.ListFilter)
	}

	result := domain.ListResult[*pointofsale.PointOfSale]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.listSelect(filter.ListFilter).
		Where(squirrel.Eq{"region_id": *filter.RegionID})

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// ListIDsByRegion returns ids of all active points of sale in a region.
// Backs the scope expansion for region admins.
func (r *PointOfSaleRepo) ListIDsByRegion(ctx context.Context, regionID id.ID) ([]id.ID, error) {
	q := r.Builder().
		Select("id").
		From(pointOfSaleTable).
		Where(squirrel.Eq{"region_id": regionID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list ids by region: %w", err)
	}
	return ids, nil
}

// RegionMap returns the point-of-sale to region mapping for all active
// points of sale. Report rollups fold point-of-sale rows into regions
// through this map.
func (r *PointOfSaleRepo) RegionMap(ctx context.Context) (map[id.ID]id.ID, error) {
	q := r.Builder().
		Select("id", "region_id").
		From(pointOfSaleTable).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	type posRegion struct {
		ID       id.ID `db:"id"`
		RegionID id.ID `db:"region_id"`
	}
	var rows []posRegion
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("region map: %w", err)
	}

	result := make(map[id.ID]id.ID, len(rows))
	for _, row := range rows {
		result[row.ID] = row.RegionID
	}
	return result, nil
}
