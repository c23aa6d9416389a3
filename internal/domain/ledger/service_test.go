package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/pkg/config"
)

// --- Mocks ---

type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLedgerRepo struct {
	entries   []*Entry
	snapshots map[string]*Snapshot

	insertErr error
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{snapshots: make(map[string]*Snapshot)}
}

func snapKey(productID id.ID, loc entity.Location) string {
	return productID.String() + "|" + loc.String()
}

func (m *mockLedgerRepo) InsertEntry(_ context.Context, e *Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockLedgerRepo) GetSnapshotForUpdate(_ context.Context, productID id.ID, loc entity.Location) (*Snapshot, error) {
	if s, ok := m.snapshots[snapKey(productID, loc)]; ok {
		return s, nil
	}
	return &Snapshot{ProductID: productID, Location: loc, Amount: types.ZeroMoney()}, nil
}

func (m *mockLedgerRepo) ApplySnapshotDelta(_ context.Context, productID id.ID, loc entity.Location, qtyDelta int64, amountDelta types.Money) error {
	key := snapKey(productID, loc)
	s, ok := m.snapshots[key]
	if !ok {
		s = &Snapshot{ProductID: productID, Location: loc, Amount: types.ZeroMoney()}
		m.snapshots[key] = s
	}
	s.Quantity += types.Quantity(qtyDelta)
	s.Amount = s.Amount.Add(amountDelta)
	return nil
}

func (m *mockLedgerRepo) Query(_ context.Context, f QueryFilter, _ *security.AccessScope) (domain.ListResult[Entry], error) {
	var items []Entry
	for _, e := range m.entries {
		items = append(items, *e)
	}
	return domain.ListResult[Entry]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *mockLedgerRepo) ListSnapshots(_ context.Context, _ SnapshotFilter, _ *security.AccessScope) (domain.ListResult[Snapshot], error) {
	var items []Snapshot
	for _, s := range m.snapshots {
		items = append(items, *s)
	}
	return domain.ListResult[Snapshot]{Items: items, TotalCount: int64(len(items))}, nil
}

type mockProductRepo struct {
	products map[id.ID]*product.Product
}

func (m *mockProductRepo) Create(context.Context, *product.Product) error { return nil }

func (m *mockProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	if p, ok := m.products[productID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", productID)
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	out := make(map[id.ID]*product.Product)
	for _, pid := range ids {
		if p, ok := m.products[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(context.Context, *product.Product) error { return nil }

func (m *mockProductRepo) SetDeletionMark(context.Context, id.ID, bool) error { return nil }

func (m *mockProductRepo) List(context.Context, domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return domain.ListResult[*product.Product]{}, nil
}

func (m *mockProductRepo) Exists(_ context.Context, productID id.ID) (bool, error) {
	_, ok := m.products[productID]
	return ok, nil
}

type mockLocationChecker struct {
	missing map[string]bool
}

func (m *mockLocationChecker) LocationExists(_ context.Context, loc entity.Location) (bool, error) {
	return !m.missing[loc.String()], nil
}

// --- Fixtures ---

func testProduct(purchase, sale string) *product.Product {
	p := &product.Product{
		Name:          "Test product",
		PurchasePrice: types.MustMoney(purchase),
		SalePrice:     types.MustMoney(sale),
		Unit:          "piece",
	}
	p.ID = id.New()
	return p
}

func newTestService(policy config.StockPolicy, prod *product.Product) (*Service, *mockLedgerRepo) {
	repo := newMockLedgerRepo()
	products := &mockProductRepo{products: map[id.ID]*product.Product{prod.ID: prod}}
	svc := NewService(repo, products, &mockLocationChecker{}, &mockTxManager{}, policy)
	return svc, repo
}

// --- Tests ---

func TestRecordMovement_Valuation(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	pos := entity.PointOfSaleLocation(id.New())
	override := types.MustMoney("99.99")

	tests := []struct {
		name       string
		cmd        RecordMovementCommand
		wantAmount string
	}{
		{
			name: "entry valued at purchase price",
			cmd: RecordMovementCommand{
				ProductID: prod.ID, Location: pos,
				Type: TypeEntry, Quantity: 10,
			},
			wantAmount: "50",
		},
		{
			name: "sale valued at sale price",
			cmd: RecordMovementCommand{
				ProductID: prod.ID, Location: pos,
				Type: TypeSale, Quantity: 4,
			},
			wantAmount: "32",
		},
		{
			name: "explicit amount wins",
			cmd: RecordMovementCommand{
				ProductID: prod.ID, Location: pos,
				Type: TypeEntry, Quantity: 3, Amount: &override,
			},
			wantAmount: "99.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(config.StockPolicyAllowNegative, prod)
			entry, err := svc.RecordMovement(context.Background(), tt.cmd)
			if err != nil {
				t.Fatalf("RecordMovement() error = %v", err)
			}
			if !entry.Amount.Equal(types.MustMoney(tt.wantAmount)) {
				t.Errorf("amount = %s, want %s", entry.Amount, tt.wantAmount)
			}
			if entry.Status != MovementStatusValidated {
				t.Errorf("status = %s, want validated", entry.Status)
			}
			if len(repo.entries) != 1 {
				t.Errorf("entries appended = %d, want 1", len(repo.entries))
			}
		})
	}
}

func TestRecordMovement_SnapshotMath(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	pos := entity.PointOfSaleLocation(id.New())
	svc, repo := newTestService(config.StockPolicyBlock, prod)
	ctx := context.Background()

	if _, err := svc.RecordMovement(ctx, RecordMovementCommand{
		ProductID: prod.ID, Location: pos, Type: TypeEntry, Quantity: 10,
	}); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if _, err := svc.RecordMovement(ctx, RecordMovementCommand{
		ProductID: prod.ID, Location: pos, Type: TypeSale, Quantity: 4,
	}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	snap := repo.snapshots[snapKey(prod.ID, pos)]
	if snap == nil {
		t.Fatal("snapshot was not created")
	}
	if snap.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", snap.Quantity)
	}
	// +10*5.00 entry, -4*8.00 sale
	if want := types.MustMoney("18"); !snap.Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", snap.Amount, want)
	}
}

func TestRecordMovement_BlockPolicy(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	pos := entity.PointOfSaleLocation(id.New())
	svc, repo := newTestService(config.StockPolicyBlock, prod)

	_, err := svc.RecordMovement(context.Background(), RecordMovementCommand{
		ProductID: prod.ID, Location: pos, Type: TypeSale, Quantity: 1,
	})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInsufficientStock {
		t.Fatalf("error = %v, want INSUFFICIENT_STOCK", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("entries appended = %d, want 0", len(repo.entries))
	}
	if got := appErr.Details["available"]; got != int64(0) {
		t.Errorf("available detail = %v, want 0", got)
	}
}

func TestRecordMovement_AllowNegative(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	pos := entity.PointOfSaleLocation(id.New())
	svc, repo := newTestService(config.StockPolicyAllowNegative, prod)

	if _, err := svc.RecordMovement(context.Background(), RecordMovementCommand{
		ProductID: prod.ID, Location: pos, Type: TypeExit, Quantity: 3,
	}); err != nil {
		t.Fatalf("RecordMovement() error = %v", err)
	}

	snap := repo.snapshots[snapKey(prod.ID, pos)]
	if snap.Quantity != -3 {
		t.Errorf("quantity = %d, want -3", snap.Quantity)
	}
}

func TestRecordMovement_Validation(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	pos := entity.PointOfSaleLocation(id.New())
	lineID := id.New()

	tests := []struct {
		name string
		cmd  RecordMovementCommand
	}{
		{"nil product", RecordMovementCommand{Location: pos, Type: TypeEntry, Quantity: 1}},
		{"zero quantity", RecordMovementCommand{ProductID: prod.ID, Location: pos, Type: TypeEntry, Quantity: 0}},
		{"negative quantity", RecordMovementCommand{ProductID: prod.ID, Location: pos, Type: TypeEntry, Quantity: -5}},
		{"unknown type", RecordMovementCommand{ProductID: prod.ID, Location: pos, Type: "restock", Quantity: 1}},
		{"unknown status", RecordMovementCommand{ProductID: prod.ID, Location: pos, Type: TypeEntry, Quantity: 1, Status: "draft"}},
		{"depot with id", RecordMovementCommand{ProductID: prod.ID, Location: entity.Location{Kind: entity.LocationKindCentralDepot, ID: id.New()}, Type: TypeEntry, Quantity: 1}},
		{"line ref on non-delivery", RecordMovementCommand{ProductID: prod.ID, Location: pos, Type: TypeSale, Quantity: 1, OrderLineID: &lineID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(config.StockPolicyBlock, prod)
			_, err := svc.RecordMovement(context.Background(), tt.cmd)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Errorf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestRecordMovement_UnknownProduct(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	svc, _ := newTestService(config.StockPolicyBlock, prod)

	_, err := svc.RecordMovement(context.Background(), RecordMovementCommand{
		ProductID: id.New(),
		Location:  entity.PointOfSaleLocation(id.New()),
		Type:      TypeEntry,
		Quantity:  1,
	})
	if !apperror.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestRecordMovement_UnknownLocation(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	pos := entity.PointOfSaleLocation(id.New())
	repo := newMockLedgerRepo()
	products := &mockProductRepo{products: map[id.ID]*product.Product{prod.ID: prod}}
	checker := &mockLocationChecker{missing: map[string]bool{pos.String(): true}}
	svc := NewService(repo, products, checker, &mockTxManager{}, config.StockPolicyBlock)

	_, err := svc.RecordMovement(context.Background(), RecordMovementCommand{
		ProductID: prod.ID, Location: pos, Type: TypeEntry, Quantity: 1,
	})
	if !apperror.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestRecordMovement_ScopeEnforced(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	ownPOS := id.New()
	otherPOS := entity.PointOfSaleLocation(id.New())
	svc, repo := newTestService(config.StockPolicyAllowNegative, prod)

	scope := &security.AccessScope{
		Role:           appctx.RolePointOfSaleAdmin,
		UserID:         id.New(),
		PointOfSaleIDs: []id.ID{ownPOS},
	}
	ctx := security.WithScope(context.Background(), scope)

	_, err := svc.RecordMovement(ctx, RecordMovementCommand{
		ProductID: prod.ID, Location: otherPOS, Type: TypeEntry, Quantity: 1,
	})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeScopeViolation {
		t.Fatalf("error = %v, want SCOPE_VIOLATION", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("entries appended = %d, want 0", len(repo.entries))
	}

	// The bound point of sale itself is fine.
	if _, err := svc.RecordMovement(ctx, RecordMovementCommand{
		ProductID: prod.ID, Location: entity.PointOfSaleLocation(ownPOS), Type: TypeEntry, Quantity: 1,
	}); err != nil {
		t.Fatalf("in-scope movement rejected: %v", err)
	}
}

func TestQuery_LocationFilterOutsideScope(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	svc, _ := newTestService(config.StockPolicyBlock, prod)

	scope := &security.AccessScope{
		Role:           appctx.RolePointOfSaleAdmin,
		PointOfSaleIDs: []id.ID{id.New()},
	}
	ctx := security.WithScope(context.Background(), scope)

	foreign := entity.PointOfSaleLocation(id.New())
	_, err := svc.Query(ctx, QueryFilter{Location: &foreign})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeScopeViolation {
		t.Fatalf("error = %v, want SCOPE_VIOLATION", err)
	}

	_, err = svc.ListSnapshots(ctx, SnapshotFilter{Location: &foreign})
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeScopeViolation {
		t.Fatalf("snapshot error = %v, want SCOPE_VIOLATION", err)
	}
}

func TestRecordMovement_RepoFailureAborts(t *testing.T) {
	prod := testProduct("5.00", "8.00")
	svc, repo := newTestService(config.StockPolicyAllowNegative, prod)
	repo.insertErr = errors.New("connection reset")

	_, err := svc.RecordMovement(context.Background(), RecordMovementCommand{
		ProductID: prod.ID,
		Location:  entity.PointOfSaleLocation(id.New()),
		Type:      TypeEntry,
		Quantity:  1,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.snapshots) != 0 {
		t.Errorf("snapshot applied after failed insert")
	}
}
