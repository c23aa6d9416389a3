package reports

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// ResolveWindow computes the half-open [from, to) interval for a period
// relative to a reference instant. Boundaries are taken in the reference
// location, normally UTC.
func ResolveWindow(p Period, ref time.Time) (Window, error) {
	switch p {
	case PeriodAll:
		return Window{}, nil

	case PeriodDay:
		from := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
		return Window{From: from, To: from.AddDate(0, 0, 1), Bounded: true}, nil

	case PeriodWeek:
		// ISO week starts Monday.
		back := (int(ref.Weekday()) + 6) % 7
		day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
		from := day.AddDate(0, 0, -back)
		return Window{From: from, To: from.AddDate(0, 0, 7), Bounded: true}, nil

	case PeriodMonth:
		from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return Window{From: from, To: from.AddDate(0, 1, 0), Bounded: true}, nil

	case PeriodYear:
		from := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		return Window{From: from, To: from.AddDate(1, 0, 0), Bounded: true}, nil
	}
	return Window{}, apperror.NewValidation("unknown period").WithDetail("period", string(p))
}

// DimensionForRole picks the default grouping axis: organization-wide roles
// compare regions, a region compares its points of sale, a point of sale
// drills into products.
func DimensionForRole(role appctx.Role) GroupDimension {
	switch role {
	case appctx.RoleSuperAdmin:
		return GroupByRegion
	case appctx.RoleRegionAdmin:
		return GroupByPointOfSale
	default:
		return GroupByProduct
	}
}

// Rollup folds entries into per-group, per-movement-type sums. posRegion
// maps point-of-sale ids to their region for region-level grouping; entries
// whose point of sale is unknown keep their own location key. Buckets come
// back sorted by key for stable output.
func Rollup(entries []ledger.Entry, dim GroupDimension, posRegion map[id.ID]id.ID) []Bucket {
	byKey := make(map[string]*Bucket)

	for i := range entries {
		e := &entries[i]
		key := groupKey(e, dim, posRegion)

		b, ok := byKey[key]
		if !ok {
			b = &Bucket{
				Key:        key,
				Quantities: make(map[ledger.MovementType]int64),
				Amounts:    make(map[ledger.MovementType]types.Money),
			}
			byKey[key] = b
		}
		b.Quantities[e.Type] += e.Quantity.Int64()
		if cur, ok := b.Amounts[e.Type]; ok {
			b.Amounts[e.Type] = cur.Add(e.Amount)
		} else {
			b.Amounts[e.Type] = e.Amount
		}
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

func groupKey(e *ledger.Entry, dim GroupDimension, posRegion map[id.ID]id.ID) string {
	switch dim {
	case GroupByProduct:
		return e.ProductID.String()

	case GroupByPointOfSale:
		if e.Location.Kind == entity.LocationKindPointOfSale {
			return e.Location.ID.String()
		}
		return e.Location.String()

	case GroupByRegion:
		switch e.Location.Kind {
		case entity.LocationKindRegion:
			return e.Location.ID.String()
		case entity.LocationKindPointOfSale:
			if regionID, ok := posRegion[e.Location.ID]; ok {
				return regionID.String()
			}
			return e.Location.String()
		default:
			return DepotGroupKey
		}
	}
	return e.Location.String()
}

// ComputeIndicators derives the headline figures. The delivery rate is
// delivered quantity over ordered quantity; with nothing ordered there is
// no meaningful rate and the string "N/A" is returned instead of a zero.
func ComputeIndicators(entries []ledger.Entry) Indicators {
	ind := Indicators{SalesAmount: types.ZeroMoney()}

	for i := range entries {
		e := &entries[i]
		switch e.Type {
		case ledger.TypeOrder:
			ind.OrderedQuantity += e.Quantity.Int64()
		case ledger.TypeDelivery:
			ind.DeliveredQuantity += e.Quantity.Int64()
		case ledger.TypeSale:
			ind.SoldQuantity += e.Quantity.Int64()
			ind.SalesAmount = ind.SalesAmount.Add(e.Amount)
		}
	}

	if ind.OrderedQuantity == 0 {
		ind.DeliveryRate = "N/A"
	} else {
		rate := float64(ind.DeliveredQuantity) / float64(ind.OrderedQuantity) * 100
		ind.DeliveryRate = fmt.Sprintf("%.1f%%", rate)
	}
	return ind
}

// ComputeShares returns each group's portion of the total moved quantity,
// keyed by bucket key and rounded to one decimal. Groups that moved nothing
// are left out of the distribution.
func ComputeShares(buckets []Bucket) map[string]Share {
	shares := make(map[string]Share)
	totals := make([]int64, len(buckets))
	var total int64
	for i := range buckets {
		for _, q := range buckets[i].Quantities {
			totals[i] += q
		}
		total += totals[i]
	}
	if total == 0 {
		return shares
	}
	for i := range buckets {
		if totals[i] == 0 {
			continue
		}
		shares[buckets[i].Key] = Share{
			Quantity: totals[i],
			Percent:  math.Round(float64(totals[i])/float64(total)*1000) / 10,
		}
	}
	return shares
}

// RankProducts ranks products by moved quantity for one movement type.
// Ordering is quantity descending with product id ascending as the
// tie-break, so equal movers rank deterministically.
//
// Mode selects the slice of the ranking: most takes the head, least the
// tail (still presented best-first), typical the middle band around the
// median rank.
func RankProducts(entries []ledger.Entry, movType ledger.MovementType, mode RankMode, limit int) []RankedProduct {
	type acc struct {
		qty    int64
		amount types.Money
	}
	byProduct := make(map[id.ID]*acc)
	for i := range entries {
		e := &entries[i]
		if e.Type != movType {
			continue
		}
		a, ok := byProduct[e.ProductID]
		if !ok {
			a = &acc{amount: types.ZeroMoney()}
			byProduct[e.ProductID] = a
		}
		a.qty += e.Quantity.Int64()
		a.amount = a.amount.Add(e.Amount)
	}

	ranked := make([]RankedProduct, 0, len(byProduct))
	for pid, a := range byProduct {
		ranked = append(ranked, RankedProduct{ProductID: pid, Quantity: a.qty, Amount: a.amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductID.String() < ranked[j].ProductID.String()
	})

	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}

	switch mode {
	case RankLeast:
		tail := ranked[len(ranked)-limit:]
		out := make([]RankedProduct, len(tail))
		copy(out, tail)
		return out
	case RankTypical:
		start := (len(ranked) - limit) / 2
		out := make([]RankedProduct, limit)
		copy(out, ranked[start:start+limit])
		return out
	default:
		out := make([]RankedProduct, limit)
		copy(out, ranked[:limit])
		return out
	}
}
