package reports

import (
	"context"
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/pointofsale"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/region"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// EntrySource reads ledger entries for aggregation. Satisfied by the ledger
// service, which conjoins the caller's scope with every read.
type EntrySource interface {
	QueryAll(ctx context.Context, f ledger.QueryFilter) ([]ledger.Entry, error)
}

// TopologyReader maps points of sale to their regions for region rollups.
type TopologyReader interface {
	RegionMap(ctx context.Context) (map[id.ID]id.ID, error)
}

// AggregateQuery selects the window, grouping and movement types to fold.
type AggregateQuery struct {
	Period   Period
	Ref      time.Time // reference instant; zero means now
	GroupBy  GroupDimension
	Types    []ledger.MovementType
	Location *entity.Location
}

// TopProductsQuery selects a product ranking. Type picks the movement type
// to rank by and defaults to sale.
type TopProductsQuery struct {
	Period Period
	Ref    time.Time
	Mode   RankMode
	Type   ledger.MovementType
	Limit  int
}

// Service wires the aggregation engine to the ledger and catalogs.
type Service struct {
	entries  EntrySource
	topo     TopologyReader
	products product.Repository
	regions  region.Repository
	pos      pointofsale.Repository

	defaultPeriod Period
}

// NewService creates a reports service.
func NewService(entries EntrySource, topo TopologyReader, products product.Repository, regions region.Repository, pos pointofsale.Repository, defaultPeriod Period) *Service {
	if !defaultPeriod.IsValid() {
		defaultPeriod = PeriodMonth
	}
	return &Service{
		entries:       entries,
		topo:          topo,
		products:      products,
		regions:       regions,
		pos:           pos,
		defaultPeriod: defaultPeriod,
	}
}

// Aggregate folds the caller's visible ledger slice into grouped totals and
// headline indicators. The grouping axis defaults per role: the organization
// compares regions, a region its points of sale, a point of sale its
// products.
func (s *Service) Aggregate(ctx context.Context, q AggregateQuery) (*Result, error) {
	scope, err := security.MustScope(ctx)
	if err != nil {
		return nil, err
	}

	period := q.Period
	if period == "" {
		period = s.defaultPeriod
	}
	ref := q.Ref
	if ref.IsZero() {
		ref = time.Now().UTC()
	}
	window, err := ResolveWindow(period, ref)
	if err != nil {
		return nil, err
	}
	for _, t := range q.Types {
		if !t.IsValid() {
			return nil, apperror.NewValidation("unknown movement type").WithDetail("type", string(t))
		}
	}

	dim := q.GroupBy
	if dim == "" {
		dim = DimensionForRole(scope.Role)
	}

	filter := ledger.QueryFilter{Types: q.Types, Location: q.Location}
	if window.Bounded {
		filter.From = &window.From
		filter.To = &window.To
	}
	entries, err := s.entries.QueryAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	var posRegion map[id.ID]id.ID
	if dim == GroupByRegion {
		posRegion, err = s.topo.RegionMap(ctx)
		if err != nil {
			return nil, err
		}
	}

	buckets := Rollup(entries, dim, posRegion)
	if err := s.labelBuckets(ctx, buckets, dim); err != nil {
		return nil, err
	}

	result := &Result{
		Period:     period,
		GroupBy:    dim,
		Buckets:    buckets,
		Indicators: ComputeIndicators(entries),
		Shares:     ComputeShares(buckets),
	}
	if window.Bounded {
		result.From = &window.From
		result.To = &window.To
	}
	return result, nil
}

// TopProducts ranks products by moved quantity in the window, sales by
// default.
func (s *Service) TopProducts(ctx context.Context, q TopProductsQuery) ([]RankedProduct, error) {
	if _, err := security.MustScope(ctx); err != nil {
		return nil, err
	}

	mode := q.Mode
	if mode == "" {
		mode = RankMost
	}
	if !mode.IsValid() {
		return nil, apperror.NewValidation("unknown ranking mode").WithDetail("mode", string(q.Mode))
	}
	movType := q.Type
	if movType == "" {
		movType = ledger.TypeSale
	}
	if !movType.IsValid() {
		return nil, apperror.NewValidation("unknown movement type").WithDetail("type", string(q.Type))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	period := q.Period
	if period == "" {
		period = s.defaultPeriod
	}
	ref := q.Ref
	if ref.IsZero() {
		ref = time.Now().UTC()
	}
	window, err := ResolveWindow(period, ref)
	if err != nil {
		return nil, err
	}

	filter := ledger.QueryFilter{Types: []ledger.MovementType{movType}}
	if window.Bounded {
		filter.From = &window.From
		filter.To = &window.To
	}
	entries, err := s.entries.QueryAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	ranked := RankProducts(entries, movType, mode, limit)

	ids := make([]id.ID, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ProductID)
	}
	prods, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		if p, ok := prods[ranked[i].ProductID]; ok {
			ranked[i].Label = p.Name
		}
	}
	return ranked, nil
}

// labelBuckets resolves human labels for bucket keys. Keys that are not
// resolvable (depot bucket, already-deleted rows) keep a sensible fallback.
func (s *Service) labelBuckets(ctx context.Context, buckets []Bucket, dim GroupDimension) error {
	switch dim {
	case GroupByProduct:
		ids := make([]id.ID, 0, len(buckets))
		for i := range buckets {
			if pid, err := id.Parse(buckets[i].Key); err == nil {
				ids = append(ids, pid)
			}
		}
		prods, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range buckets {
			buckets[i].Label = buckets[i].Key
			if pid, err := id.Parse(buckets[i].Key); err == nil {
				if p, ok := prods[pid]; ok {
					buckets[i].Label = p.Name
				}
			}
		}

	case GroupByPointOfSale:
		for i := range buckets {
			buckets[i].Label = buckets[i].Key
			if posID, err := id.Parse(buckets[i].Key); err == nil {
				if p, err := s.pos.GetByID(ctx, posID); err == nil {
					buckets[i].Label = p.Name
				}
			}
		}

	case GroupByRegion:
		for i := range buckets {
			buckets[i].Label = buckets[i].Key
			if buckets[i].Key == DepotGroupKey {
				buckets[i].Label = "Central depot"
				continue
			}
			if regionID, err := id.Parse(buckets[i].Key); err == nil {
				if r, err := s.regions.GetByID(ctx, regionID); err == nil {
					buckets[i].Label = r.Name
				}
			}
		}
	}
	return nil
}
