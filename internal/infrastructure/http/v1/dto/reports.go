package dto

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
	"github.com/shabani2/salemanagement-api/internal/domain/reports"
)

// AggregateQueryRequest selects period, grouping and movement types for an
// aggregation. Zero values fall back to role-driven defaults.
type AggregateQueryRequest struct {
	Period       string     `form:"period"`
	Ref          *time.Time `form:"ref" time_format:"2006-01-02"`
	GroupBy      string     `form:"groupBy"`
	Types        []string   `form:"type"`
	LocationKind string     `form:"locationKind"`
	LocationID   string     `form:"locationId"`
}

// ToQuery converts the request to a domain query.
func (r *AggregateQueryRequest) ToQuery() (reports.AggregateQuery, error) {
	q := reports.AggregateQuery{
		Period:  reports.Period(r.Period),
		GroupBy: reports.GroupDimension(r.GroupBy),
	}
	if r.Ref != nil {
		q.Ref = *r.Ref
	}
	for _, t := range r.Types {
		q.Types = append(q.Types, ledger.MovementType(t))
	}
	if r.LocationKind != "" {
		loc, err := LocationDTO{Kind: r.LocationKind, ID: r.LocationID}.ToLocation()
		if err != nil {
			return q, err
		}
		q.Location = &loc
	}
	return q, nil
}

// TopProductsQueryRequest selects a product ranking. Type defaults to sale
// when absent.
type TopProductsQueryRequest struct {
	Period string     `form:"period"`
	Ref    *time.Time `form:"ref" time_format:"2006-01-02"`
	Mode   string     `form:"mode"`
	Type   string     `form:"type"`
	Limit  int        `form:"limit"`
}

// ToQuery converts the request to a domain query.
func (r *TopProductsQueryRequest) ToQuery() reports.TopProductsQuery {
	q := reports.TopProductsQuery{
		Period: reports.Period(r.Period),
		Mode:   reports.RankMode(r.Mode),
		Type:   ledger.MovementType(r.Type),
		Limit:  r.Limit,
	}
	if r.Ref != nil {
		q.Ref = *r.Ref
	}
	return q
}
