package reports

import (
	"testing"
	"time"

	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func entryAt(productID id.ID, loc entity.Location, typ ledger.MovementType, qty int64, amount string) ledger.Entry {
	return ledger.Entry{
		ID:        id.New(),
		ProductID: productID,
		Location:  loc,
		Type:      typ,
		Quantity:  types.Quantity(qty),
		Amount:    types.MustMoney(amount),
	}
}

func TestResolveWindow(t *testing.T) {
	// A Wednesday mid-afternoon.
	ref := mustTime("2026-08-19T15:04:05Z")

	tests := []struct {
		period   Period
		wantFrom string
		wantTo   string
	}{
		{PeriodDay, "2026-08-19T00:00:00Z", "2026-08-20T00:00:00Z"},
		{PeriodWeek, "2026-08-17T00:00:00Z", "2026-08-24T00:00:00Z"},
		{PeriodMonth, "2026-08-01T00:00:00Z", "2026-09-01T00:00:00Z"},
		{PeriodYear, "2026-01-01T00:00:00Z", "2027-01-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			w, err := ResolveWindow(tt.period, ref)
			if err != nil {
				t.Fatalf("ResolveWindow() error = %v", err)
			}
			if !w.Bounded {
				t.Fatal("window not bounded")
			}
			if !w.From.Equal(mustTime(tt.wantFrom)) || !w.To.Equal(mustTime(tt.wantTo)) {
				t.Errorf("window = [%s, %s), want [%s, %s)", w.From, w.To, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestResolveWindow_WeekStartsMonday(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	w, err := ResolveWindow(PeriodWeek, mustTime("2026-08-23T10:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	if !w.From.Equal(mustTime("2026-08-17T00:00:00Z")) {
		t.Errorf("from = %s, want Monday 2026-08-17", w.From)
	}

	// Monday itself starts a new week.
	w, err = ResolveWindow(PeriodWeek, mustTime("2026-08-24T00:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	if !w.From.Equal(mustTime("2026-08-24T00:00:00Z")) {
		t.Errorf("from = %s, want Monday 2026-08-24", w.From)
	}
}

func TestResolveWindow_All(t *testing.T) {
	w, err := ResolveWindow(PeriodAll, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if w.Bounded {
		t.Error("all-time window must be unbounded")
	}
	if !w.Contains(mustTime("1999-01-01T00:00:00Z")) {
		t.Error("unbounded window must contain everything")
	}
}

func TestResolveWindow_Unknown(t *testing.T) {
	if _, err := ResolveWindow("quarter", time.Now()); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestWindowHalfOpen(t *testing.T) {
	w, _ := ResolveWindow(PeriodDay, mustTime("2026-08-19T12:00:00Z"))
	if !w.Contains(mustTime("2026-08-19T00:00:00Z")) {
		t.Error("from boundary must be inclusive")
	}
	if w.Contains(mustTime("2026-08-20T00:00:00Z")) {
		t.Error("to boundary must be exclusive")
	}
}

func TestDimensionForRole(t *testing.T) {
	tests := []struct {
		role appctx.Role
		want GroupDimension
	}{
		{appctx.RoleSuperAdmin, GroupByRegion},
		{appctx.RoleRegionAdmin, GroupByPointOfSale},
		{appctx.RolePointOfSaleAdmin, GroupByProduct},
		{appctx.RoleSalesperson, GroupByProduct},
		{appctx.RoleLogistician, GroupByProduct},
	}
	for _, tt := range tests {
		if got := DimensionForRole(tt.role); got != tt.want {
			t.Errorf("DimensionForRole(%s) = %s, want %s", tt.role, got, tt.want)
		}
	}
}

func TestRollup_ByRegionFoldsPointsOfSale(t *testing.T) {
	prodA := id.New()
	regionID := id.New()
	posA, posB := id.New(), id.New()
	posRegion := map[id.ID]id.ID{posA: regionID, posB: regionID}

	entries := []ledger.Entry{
		entryAt(prodA, entity.PointOfSaleLocation(posA), ledger.TypeSale, 5, "50"),
		entryAt(prodA, entity.PointOfSaleLocation(posB), ledger.TypeSale, 3, "30"),
		entryAt(prodA, entity.RegionLocation(regionID), ledger.TypeEntry, 20, "200"),
		entryAt(prodA, entity.CentralDepot(), ledger.TypeEntry, 100, "1000"),
	}

	buckets := Rollup(entries, GroupByRegion, posRegion)
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2 (region and depot)", len(buckets))
	}

	byKey := make(map[string]Bucket)
	for _, b := range buckets {
		byKey[b.Key] = b
	}

	reg := byKey[regionID.String()]
	if reg.QuantityOf(ledger.TypeSale) != 8 {
		t.Errorf("region sales = %d, want 8", reg.QuantityOf(ledger.TypeSale))
	}
	if reg.QuantityOf(ledger.TypeEntry) != 20 {
		t.Errorf("region entries = %d, want 20", reg.QuantityOf(ledger.TypeEntry))
	}
	if !reg.Amounts[ledger.TypeSale].Equal(types.MustMoney("80")) {
		t.Errorf("region sales amount = %s, want 80", reg.Amounts[ledger.TypeSale])
	}

	depot := byKey[DepotGroupKey]
	if depot.QuantityOf(ledger.TypeEntry) != 100 {
		t.Errorf("depot entries = %d, want 100", depot.QuantityOf(ledger.TypeEntry))
	}
}

func TestRollup_ByProduct(t *testing.T) {
	prodA, prodB := id.New(), id.New()
	pos := entity.PointOfSaleLocation(id.New())

	entries := []ledger.Entry{
		entryAt(prodA, pos, ledger.TypeSale, 2, "20"),
		entryAt(prodA, pos, ledger.TypeSale, 3, "30"),
		entryAt(prodB, pos, ledger.TypeSale, 7, "70"),
	}

	buckets := Rollup(entries, GroupByProduct, nil)
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(buckets))
	}
	for _, b := range buckets {
		switch b.Key {
		case prodA.String():
			if b.QuantityOf(ledger.TypeSale) != 5 {
				t.Errorf("product A = %d, want 5", b.QuantityOf(ledger.TypeSale))
			}
		case prodB.String():
			if b.QuantityOf(ledger.TypeSale) != 7 {
				t.Errorf("product B = %d, want 7", b.QuantityOf(ledger.TypeSale))
			}
		default:
			t.Errorf("unexpected bucket key %s", b.Key)
		}
	}
}

func TestComputeIndicators(t *testing.T) {
	prod := id.New()
	pos := entity.PointOfSaleLocation(id.New())

	entries := []ledger.Entry{
		entryAt(prod, pos, ledger.TypeOrder, 40, "400"),
		entryAt(prod, pos, ledger.TypeDelivery, 30, "300"),
		entryAt(prod, pos, ledger.TypeSale, 25, "625"),
	}

	ind := ComputeIndicators(entries)
	if ind.OrderedQuantity != 40 || ind.DeliveredQuantity != 30 || ind.SoldQuantity != 25 {
		t.Errorf("quantities = %d/%d/%d", ind.OrderedQuantity, ind.DeliveredQuantity, ind.SoldQuantity)
	}
	if ind.DeliveryRate != "75.0%" {
		t.Errorf("delivery rate = %s, want 75.0%%", ind.DeliveryRate)
	}
	if !ind.SalesAmount.Equal(types.MustMoney("625")) {
		t.Errorf("sales amount = %s, want 625", ind.SalesAmount)
	}
}

func TestComputeIndicators_NoOrders(t *testing.T) {
	prod := id.New()
	pos := entity.PointOfSaleLocation(id.New())

	ind := ComputeIndicators([]ledger.Entry{
		entryAt(prod, pos, ledger.TypeSale, 5, "50"),
	})
	if ind.DeliveryRate != "N/A" {
		t.Errorf("delivery rate = %s, want N/A when nothing ordered", ind.DeliveryRate)
	}
}

func TestComputeShares(t *testing.T) {
	prodA, prodB := id.New(), id.New()
	posA := entity.PointOfSaleLocation(id.New())
	posB := entity.PointOfSaleLocation(id.New())

	buckets := Rollup([]ledger.Entry{
		entryAt(prodA, posA, ledger.TypeEntry, 50, "500"),
		entryAt(prodA, posA, ledger.TypeSale, 25, "250"),
		entryAt(prodB, posB, ledger.TypeSale, 25, "250"),
	}, GroupByPointOfSale, nil)

	shares := ComputeShares(buckets)
	if len(shares) != 2 {
		t.Fatalf("shares = %v, want 2 groups", shares)
	}
	a := shares[posA.ID.String()]
	if a.Quantity != 75 || a.Percent != 75.0 {
		t.Errorf("first group share = %+v, want 75 at 75%%", a)
	}
	b := shares[posB.ID.String()]
	if b.Quantity != 25 || b.Percent != 25.0 {
		t.Errorf("second group share = %+v, want 25 at 25%%", b)
	}

	if got := ComputeShares(nil); len(got) != 0 {
		t.Errorf("shares of nothing = %v, want empty", got)
	}
}

func TestRankProducts(t *testing.T) {
	pos := entity.PointOfSaleLocation(id.New())
	ids := []id.ID{id.New(), id.New(), id.New(), id.New(), id.New()}

	var entries []ledger.Entry
	for i, pid := range ids {
		entries = append(entries, entryAt(pid, pos, ledger.TypeSale, int64(10*(i+1)), "1"))
	}
	// Other movement types never count toward a sale ranking.
	entries = append(entries, entryAt(ids[0], pos, ledger.TypeEntry, 1000, "1"))

	most := RankProducts(entries, ledger.TypeSale, RankMost, 2)
	if len(most) != 2 || most[0].Quantity != 50 || most[1].Quantity != 40 {
		t.Errorf("most = %+v", most)
	}

	least := RankProducts(entries, ledger.TypeSale, RankLeast, 2)
	if len(least) != 2 || least[0].Quantity != 20 || least[1].Quantity != 10 {
		t.Errorf("least = %+v", least)
	}

	typical := RankProducts(entries, ledger.TypeSale, RankTypical, 1)
	if len(typical) != 1 || typical[0].Quantity != 30 {
		t.Errorf("typical = %+v, want the median seller", typical)
	}
}

func TestRankProducts_ByMovementType(t *testing.T) {
	pos := entity.PointOfSaleLocation(id.New())
	a, b := id.New(), id.New()

	entries := []ledger.Entry{
		entryAt(a, pos, ledger.TypeDelivery, 40, "1"),
		entryAt(b, pos, ledger.TypeDelivery, 15, "1"),
		entryAt(b, pos, ledger.TypeSale, 90, "1"),
	}

	ranked := RankProducts(entries, ledger.TypeDelivery, RankMost, 10)
	if len(ranked) != 2 {
		t.Fatalf("ranked = %+v, want 2 products", ranked)
	}
	if ranked[0].ProductID != a || ranked[0].Quantity != 40 {
		t.Errorf("top delivered = %+v, want product a with 40", ranked[0])
	}
}

func TestRankProducts_TieBreak(t *testing.T) {
	pos := entity.PointOfSaleLocation(id.New())
	a, b := id.New(), id.New()
	lo, hi := a, b
	if b.String() < a.String() {
		lo, hi = b, a
	}

	entries := []ledger.Entry{
		entryAt(hi, pos, ledger.TypeSale, 10, "1"),
		entryAt(lo, pos, ledger.TypeSale, 10, "1"),
	}

	ranked := RankProducts(entries, ledger.TypeSale, RankMost, 2)
	if ranked[0].ProductID != lo || ranked[1].ProductID != hi {
		t.Error("equal quantities must rank by product id ascending")
	}
}

func TestRankProducts_LimitBeyondSize(t *testing.T) {
	pos := entity.PointOfSaleLocation(id.New())
	entries := []ledger.Entry{
		entryAt(id.New(), pos, ledger.TypeSale, 5, "1"),
	}
	if got := RankProducts(entries, ledger.TypeSale, RankMost, 10); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if got := RankProducts(nil, ledger.TypeSale, RankMost, 10); len(got) != 0 {
		t.Errorf("len = %d, want 0 for no sales", len(got))
	}
}
