package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// --- Mocks ---

type txMarker struct{}

type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txMarker{}, true))
}

type mockOrderRepo struct {
	orders map[id.ID]*Order
	lines  map[id.ID]*Line

	deliverRejects bool // force the conditional update to report a lost race
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[id.ID]*Order), lines: make(map[id.ID]*Line)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.orders[o.ID] = o
	for i := range o.Lines {
		m.lines[o.Lines[i].ID] = &o.Lines[i]
	}
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	if o, ok := m.orders[orderID]; ok {
		return o, nil
	}
	return nil, apperror.NewNotFound("order", orderID)
}

func (m *mockOrderRepo) GetLine(_ context.Context, lineID id.ID) (*Line, error) {
	if l, ok := m.lines[lineID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, apperror.NewNotFound("order line", lineID)
}

func (m *mockOrderRepo) GetLineForUpdate(ctx context.Context, lineID id.ID) (*Line, error) {
	return m.GetLine(ctx, lineID)
}

func (m *mockOrderRepo) SetLineDelivered(_ context.Context, lineID, entryID id.ID) (bool, error) {
	if m.deliverRejects {
		return false, nil
	}
	l, ok := m.lines[lineID]
	if !ok || l.Status != LineStatusPending {
		return false, nil
	}
	l.Status = LineStatusDelivered
	l.MovementEntryID = &entryID
	return true, nil
}

func (m *mockOrderRepo) SetLineCancelled(_ context.Context, lineID id.ID) (bool, error) {
	l, ok := m.lines[lineID]
	if !ok || l.Status != LineStatusPending {
		return false, nil
	}
	l.Status = LineStatusCancelled
	return true, nil
}

func (m *mockOrderRepo) List(_ context.Context, f ListFilter, _ *security.AccessScope) (domain.ListResult[Order], error) {
	var items []Order
	for _, o := range m.orders {
		if f.RequesterID != nil && o.RequesterID != *f.RequesterID {
			continue
		}
		items = append(items, *o)
	}
	return domain.ListResult[Order]{Items: items, TotalCount: int64(len(items))}, nil
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

type mockStock struct {
	recorded []ledger.RecordMovementCommand
	err      error
}

func (m *mockStock) RecordMovement(_ context.Context, cmd ledger.RecordMovementCommand) (*ledger.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.recorded = append(m.recorded, cmd)
	return &ledger.Entry{
		ID:        id.New(),
		ProductID: cmd.ProductID,
		Location:  cmd.Location,
		Type:      cmd.Type,
		Quantity:  cmd.Quantity,
	}, nil
}

type mockNumbers struct {
	n    int
	inTx bool
}

func (m *mockNumbers) NextOrderNumber(ctx context.Context) (string, error) {
	m.inTx = ctx.Value(txMarker{}) != nil
	m.n++
	return fmt.Sprintf("ORD-2026-%05d", m.n), nil
}

type mockAudit struct{ events []AuditEvent }

func (m *mockAudit) Record(_ context.Context, e AuditEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAudit) History(_ context.Context, orderID id.ID, _ int) ([]AuditEvent, error) {
	var out []AuditEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].OrderID == orderID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

// --- Fixtures ---

type fixture struct {
	svc     *Service
	repo    *mockOrderRepo
	stock   *mockStock
	audit   *mockAudit
	numbers *mockNumbers
	prod    *product.Product
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	prod := &product.Product{
		Name:          "Bag of rice 25kg",
		PurchasePrice: types.MustMoney("18.00"),
		SalePrice:     types.MustMoney("25.00"),
		Unit:          "bag",
	}
	prod.ID = id.New()

	repo := newMockOrderRepo()
	stock := &mockStock{}
	audit := &mockAudit{}
	numbers := &mockNumbers{}
	svc := NewService(
		repo,
		&mockProductRepo{products: map[id.ID]*product.Product{prod.ID: prod}},
		stock,
		numbers,
		audit,
		&mockTxManager{},
	)

	user := &appctx.UserContext{UserID: id.New(), Role: appctx.RoleSuperAdmin}
	ctx := appctx.WithUser(context.Background(), user)
	ctx = security.WithScope(ctx, &security.AccessScope{Role: appctx.RoleSuperAdmin, UserID: user.UserID, All: true})

	return &fixture{svc: svc, repo: repo, stock: stock, audit: audit, numbers: numbers, prod: prod, ctx: ctx}
}

func (f *fixture) createOrder(t *testing.T, quantities ...int64) *Order {
	t.Helper()
	cmd := CreateOrderCommand{Destination: entity.PointOfSaleLocation(id.New())}
	for _, q := range quantities {
		cmd.Lines = append(cmd.Lines, CreateLineInput{ProductID: f.prod.ID, Quantity: types.Quantity(q)})
	}
	order, err := f.svc.Create(f.ctx, cmd)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return order
}

// --- Tests ---

func TestCreate(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10, 5)

	if order.Number != "ORD-2026-00001" {
		t.Errorf("number = %s", order.Number)
	}
	if got := order.Status(); got != OrderStatusPending {
		t.Errorf("status = %s, want pending", got)
	}
	for i, l := range order.Lines {
		if l.Status != LineStatusPending {
			t.Errorf("line %d status = %s, want pending", i, l.Status)
		}
		if !l.UnitPrice.Equal(f.prod.SalePrice) {
			t.Errorf("line %d unit price = %s, want sale price %s", i, l.UnitPrice, f.prod.SalePrice)
		}
	}
	if want := types.MustMoney("375"); !order.Total().Equal(want) {
		t.Errorf("total = %s, want %s", order.Total(), want)
	}
}

func TestCreate_NumberAllocatedInTransaction(t *testing.T) {
	f := newFixture(t)
	f.createOrder(t, 1)

	if !f.numbers.inTx {
		t.Error("order number allocated outside the creating transaction")
	}
}

func TestCreate_DepotDestination(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(f.ctx, CreateOrderCommand{
		Destination: entity.CentralDepot(),
		Lines:       []CreateLineInput{{ProductID: f.prod.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !order.Destination.IsCentralDepot() {
		t.Errorf("destination = %s, want central depot", order.Destination)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	dest := entity.PointOfSaleLocation(id.New())

	tests := []struct {
		name string
		cmd  CreateOrderCommand
	}{
		{"no lines", CreateOrderCommand{Destination: dest}},
		{"zero quantity", CreateOrderCommand{Destination: dest, Lines: []CreateLineInput{{ProductID: f.prod.ID, Quantity: 0}}}},
		{"nil product", CreateOrderCommand{Destination: dest, Lines: []CreateLineInput{{Quantity: 1}}}},
		{"zero destination", CreateOrderCommand{Lines: []CreateLineInput{{ProductID: f.prod.ID, Quantity: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, tt.cmd)
			if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeValidation {
				t.Errorf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestCreate_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.ctx, CreateOrderCommand{
		Destination: entity.PointOfSaleLocation(id.New()),
		Lines:       []CreateLineInput{{ProductID: id.New(), Quantity: 1}},
	})
	if !apperror.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestCreate_DestinationOutsideScope(t *testing.T) {
	f := newFixture(t)
	scoped := security.WithScope(context.Background(), &security.AccessScope{
		Role:           appctx.RolePointOfSaleAdmin,
		PointOfSaleIDs: []id.ID{id.New()},
	})
	scoped = appctx.WithUser(scoped, &appctx.UserContext{UserID: id.New(), Role: appctx.RolePointOfSaleAdmin})

	_, err := f.svc.Create(scoped, CreateOrderCommand{
		Destination: entity.PointOfSaleLocation(id.New()),
		Lines:       []CreateLineInput{{ProductID: f.prod.ID, Quantity: 1}},
	})
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeScopeViolation {
		t.Fatalf("error = %v, want SCOPE_VIOLATION", err)
	}
}

func TestDeliverLine(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10)
	lineID := order.Lines[0].ID

	line, err := f.svc.DeliverLine(f.ctx, order.ID, lineID)
	if err != nil {
		t.Fatalf("DeliverLine() error = %v", err)
	}
	if line.Status != LineStatusDelivered {
		t.Errorf("status = %s, want delivered", line.Status)
	}
	if line.MovementEntryID == nil {
		t.Error("movement entry reference not set")
	}

	if len(f.stock.recorded) != 1 {
		t.Fatalf("movements recorded = %d, want 1", len(f.stock.recorded))
	}
	mv := f.stock.recorded[0]
	if mv.Type != ledger.TypeDelivery {
		t.Errorf("movement type = %s, want delivery", mv.Type)
	}
	if mv.Quantity != 10 {
		t.Errorf("movement quantity = %d, want 10", mv.Quantity)
	}
	if mv.OrderLineID == nil || *mv.OrderLineID != lineID {
		t.Error("movement does not reference the line")
	}
	if mv.Amount == nil || !mv.Amount.Equal(types.MustMoney("250")) {
		t.Errorf("movement amount = %v, want 250", mv.Amount)
	}

	if len(f.audit.events) != 1 || f.audit.events[0].Action != "line_delivered" {
		t.Errorf("audit events = %+v", f.audit.events)
	}

	stored, _ := f.repo.GetByID(f.ctx, order.ID)
	if got := stored.Status(); got != OrderStatusDelivered {
		t.Errorf("order status = %s, want delivered", got)
	}
}

func TestDeliverLine_Terminal(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10, 5)
	delivered := order.Lines[0].ID
	cancelled := order.Lines[1].ID

	if _, err := f.svc.DeliverLine(f.ctx, order.ID, delivered); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := f.svc.CancelLine(f.ctx, order.ID, cancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	tests := []struct {
		name     string
		op       func() error
		wantCode string
	}{
		{"redeliver delivered line", func() error {
			_, err := f.svc.DeliverLine(f.ctx, order.ID, delivered)
			return err
		}, apperror.CodeLineAlreadyDelivered},
		{"deliver cancelled line", func() error {
			_, err := f.svc.DeliverLine(f.ctx, order.ID, cancelled)
			return err
		}, apperror.CodeLineAlreadyCancelled},
		{"cancel delivered line", func() error {
			_, err := f.svc.CancelLine(f.ctx, order.ID, delivered)
			return err
		}, apperror.CodeLineAlreadyDelivered},
		{"recancel cancelled line", func() error {
			_, err := f.svc.CancelLine(f.ctx, order.ID, cancelled)
			return err
		}, apperror.CodeLineAlreadyCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != tt.wantCode {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
			if !apperror.IsConflict(err) {
				t.Errorf("IsConflict(%v) = false", err)
			}
		})
	}

	// One movement total: terminal states never reach the ledger again.
	if len(f.stock.recorded) != 1 {
		t.Errorf("movements recorded = %d, want 1", len(f.stock.recorded))
	}
}

func TestDeliverLine_InsufficientStockLeavesLinePending(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10)
	f.stock.err = apperror.NewInsufficientStock(f.prod.ID.String(), 10, 2)

	_, err := f.svc.DeliverLine(f.ctx, order.ID, order.Lines[0].ID)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInsufficientStock {
		t.Fatalf("error = %v, want INSUFFICIENT_STOCK", err)
	}

	line, _ := f.repo.GetLine(f.ctx, order.Lines[0].ID)
	if line.Status != LineStatusPending {
		t.Errorf("line status = %s, want pending", line.Status)
	}
	if len(f.audit.events) != 0 {
		t.Errorf("audit recorded on failed delivery")
	}
}

func TestDeliverLine_LostRace(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10)
	f.repo.deliverRejects = true

	_, err := f.svc.DeliverLine(f.ctx, order.ID, order.Lines[0].ID)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeLineAlreadyDelivered {
		t.Fatalf("error = %v, want LINE_ALREADY_DELIVERED", err)
	}
}

func TestDeliverLine_WrongOrder(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10)
	other := f.createOrder(t, 1)

	_, err := f.svc.DeliverLine(f.ctx, other.ID, order.Lines[0].ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestCancelLine(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10)

	line, err := f.svc.CancelLine(f.ctx, order.ID, order.Lines[0].ID)
	if err != nil {
		t.Fatalf("CancelLine() error = %v", err)
	}
	if line.Status != LineStatusCancelled {
		t.Errorf("status = %s, want cancelled", line.Status)
	}
	if len(f.stock.recorded) != 0 {
		t.Errorf("cancellation must not touch the ledger")
	}

	stored, _ := f.repo.GetByID(f.ctx, order.ID)
	if got := stored.Status(); got != OrderStatusCancelled {
		t.Errorf("order status = %s, want cancelled", got)
	}
}

func TestGet_OutsideScopeHidden(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 1)

	scoped := security.WithScope(context.Background(), &security.AccessScope{
		Role:           appctx.RolePointOfSaleAdmin,
		PointOfSaleIDs: []id.ID{id.New()},
	})
	_, err := f.svc.Get(scoped, order.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestList_SalespersonSeesOwnOnly(t *testing.T) {
	f := newFixture(t)
	mine := id.New()
	posID := id.New()

	// Two orders by different requesters.
	for _, req := range []id.ID{mine, id.New()} {
		r := req
		_, err := f.svc.Create(f.ctx, CreateOrderCommand{
			Destination: entity.PointOfSaleLocation(posID),
			Lines:       []CreateLineInput{{ProductID: f.prod.ID, Quantity: 1}},
			RequesterID: &r,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	scoped := security.WithScope(context.Background(), &security.AccessScope{
		Role:           appctx.RoleSalesperson,
		UserID:         mine,
		PointOfSaleIDs: []id.ID{posID},
		OwnRecordsOnly: true,
	})
	res, err := f.svc.List(scoped, ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(res.Items))
	}
	if res.Items[0].RequesterID != mine {
		t.Error("listed someone else's order")
	}
}

func TestAuditHistory(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 10, 5)

	if _, err := f.svc.DeliverLine(f.ctx, order.ID, order.Lines[0].ID); err != nil {
		t.Fatalf("DeliverLine() error = %v", err)
	}
	if _, err := f.svc.CancelLine(f.ctx, order.ID, order.Lines[1].ID); err != nil {
		t.Fatalf("CancelLine() error = %v", err)
	}

	events, err := f.svc.AuditHistory(f.ctx, order.ID, 10)
	if err != nil {
		t.Fatalf("AuditHistory() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Action != "line_cancelled" || events[1].Action != "line_delivered" {
		t.Errorf("events out of order: %+v", events)
	}

	if _, err := f.svc.AuditHistory(f.ctx, id.New(), 10); !apperror.IsNotFound(err) {
		t.Errorf("unknown order error = %v, want NOT_FOUND", err)
	}
}
