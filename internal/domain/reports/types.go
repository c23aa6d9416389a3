// Package reports implements role-scoped aggregation over the stock ledger.
package reports

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// Period selects the reporting window relative to a reference date.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week" // ISO week, Monday start
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// IsValid reports whether the period is one of the known values.
func (p Period) IsValid() bool {
	switch p {
	case PeriodAll, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Window is a half-open time interval [From, To). Bounded is false for the
// all-time period, in which case From and To are zero.
type Window struct {
	From    time.Time
	To      time.Time
	Bounded bool
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Bounded {
		return true
	}
	return !t.Before(w.From) && t.Before(w.To)
}

// GroupDimension is the axis buckets are keyed by.
type GroupDimension string

const (
	GroupByRegion      GroupDimension = "region"
	GroupByPointOfSale GroupDimension = "point_of_sale"
	GroupByProduct     GroupDimension = "product"
)

// DepotGroupKey identifies the central depot bucket under region grouping.
const DepotGroupKey = "central_depot"

// Bucket is one aggregation group: per-movement-type quantity and amount
// sums for one key on the grouping axis.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`

	Quantities map[ledger.MovementType]int64       `json:"quantities"`
	Amounts    map[ledger.MovementType]types.Money `json:"amounts"`
}

// QuantityOf returns the summed quantity for one movement type.
func (b *Bucket) QuantityOf(t ledger.MovementType) int64 {
	return b.Quantities[t]
}

// Indicators are the headline figures computed across the whole window.
type Indicators struct {
	OrderedQuantity   int64       `json:"orderedQuantity"`
	DeliveredQuantity int64       `json:"deliveredQuantity"`
	SoldQuantity      int64       `json:"soldQuantity"`
	SalesAmount       types.Money `json:"salesAmount"`

	// DeliveryRate is delivered/ordered as a percentage string, or "N/A"
	// when nothing was ordered in the window.
	DeliveryRate string `json:"deliveryRate"`
}

// Result is a complete aggregation response.
type Result struct {
	Period  Period         `json:"period"`
	From    *time.Time     `json:"from,omitempty"`
	To      *time.Time     `json:"to,omitempty"`
	GroupBy GroupDimension `json:"groupBy"`

	Buckets    []Bucket         `json:"buckets"`
	Indicators Indicators       `json:"indicators"`
	Shares     map[string]Share `json:"shares,omitempty"`
}

// Share is one group's portion of the total moved quantity.
type Share struct {
	Quantity int64   `json:"quantity"`
	Percent  float64 `json:"percent"`
}

// RankMode selects which products a ranking query returns.
type RankMode string

const (
	RankMost    RankMode = "most"
	RankTypical RankMode = "typical" // the median seller by rank
	RankLeast   RankMode = "least"
)

// IsValid reports whether the mode is one of the known values.
func (m RankMode) IsValid() bool {
	switch m {
	case RankMost, RankTypical, RankLeast:
		return true
	}
	return false
}

// RankedProduct is one entry in a product ranking.
type RankedProduct struct {
	ProductID id.ID       `json:"productId"`
	Label     string      `json:"label"`
	Quantity  int64       `json:"quantity"`
	Amount    types.Money `json:"amount"`
}
