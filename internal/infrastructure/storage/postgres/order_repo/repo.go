// Package order_repo provides the PostgreSQL implementation of order
// persistence.
package order_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/orders"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
)

const (
	orderTable = "orders"
	lineTable  = "order_lines"
)

var orderColumns = []string{
	"id", "number", "location_kind", "location_id", "requester_id", "created_at", "updated_at",
}

var lineColumns = []string{
	"id", "order_id", "product_id", "quantity", "unit_price",
	"status", "movement_entry_id", "created_at", "updated_at",
}

type orderRow struct {
	ID           id.ID               `db:"id"`
	Number       string              `db:"number"`
	LocationKind entity.LocationKind `db:"location_kind"`
	LocationID   id.ID               `db:"location_id"`
	RequesterID  id.ID               `db:"requester_id"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

func (r orderRow) toOrder() orders.Order {
	return orders.Order{
		ID:          r.ID,
		Number:      r.Number,
		Destination: entity.Location{Kind: r.LocationKind, ID: r.LocationID},
		RequesterID: r.RequesterID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type lineRow struct {
	ID              id.ID             `db:"id"`
	OrderID         id.ID             `db:"order_id"`
	ProductID       id.ID             `db:"product_id"`
	Quantity        types.Quantity    `db:"quantity"`
	UnitPrice       types.Money       `db:"unit_price"`
	Status          orders.LineStatus `db:"status"`
	MovementEntryID *id.ID            `db:"movement_entry_id"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
}

func (r lineRow) toLine() orders.Line {
	return orders.Line{
		ID:              r.ID,
		OrderID:         r.OrderID,
		Product:         types.RefID[product.Product](r.ProductID),
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		Status:          r.Status,
		MovementEntryID: r.MovementEntryID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Repo implements orders.Repository.
type Repo struct {
	txManager *postgres.TxManager
}

var _ orders.Repository = (*Repo)(nil)

// NewRepo creates a new order repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts the order and its lines in one statement batch. Must run
// inside a transaction so a line failure rolls back the header.
func (r *Repo) Create(ctx context.Context, o *orders.Order) error {
	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("order create requires a transaction")
	}

	queries := make([]postgres.BatchQuery, 0, 1+len(o.Lines))

	orderSQL, orderArgs, err := r.builder().
		Insert(orderTable).
		Columns(orderColumns...).
		Values(
			o.ID, o.Number, o.Destination.Kind, o.Destination.ID,
			o.RequesterID, o.CreatedAt, o.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build order insert: %w", err)
	}
	queries = append(queries, postgres.BatchQuery{SQL: orderSQL, Args: orderArgs})

	for i := range o.Lines {
		line := &o.Lines[i]
		lineSQL, lineArgs, err := r.builder().
			Insert(lineTable).
			Columns(lineColumns...).
			Values(
				line.ID, line.OrderID, line.Product.ID, line.Quantity,
				line.UnitPrice, line.Status, line.MovementEntryID,
				line.CreatedAt, line.UpdatedAt,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("build line insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: lineSQL, Args: lineArgs})
	}

	if err := postgres.ExecuteBatch(ctx, tx, queries); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID loads the order with all its lines.
func (r *Repo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	sql, args, err := r.builder().
		Select(orderColumns...).
		From(orderTable).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row orderRow
	querier := r.querier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	order := row.toOrder()
	order.Lines, err = r.linesByOrders(ctx, []id.ID{orderID})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetLine loads a single line.
func (r *Repo) GetLine(ctx context.Context, lineID id.ID) (*orders.Line, error) {
	return r.getLine(ctx, lineID, false)
}

// GetLineForUpdate loads a line under FOR UPDATE. Must run inside a
// transaction; the lock serializes concurrent delivery attempts.
func (r *Repo) GetLineForUpdate(ctx context.Context, lineID id.ID) (*orders.Line, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("line lock requires a transaction")
	}
	return r.getLine(ctx, lineID, true)
}

func (r *Repo) getLine(ctx context.Context, lineID id.ID, forUpdate bool) (*orders.Line, error) {
	q := r.builder().
		Select(lineColumns...).
		From(lineTable).
		Where(squirrel.Eq{"id": lineID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row lineRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order line", lineID.String())
		}
		return nil, fmt.Errorf("get line: %w", err)
	}

	line := row.toLine()
	return &line, nil
}

// SetLineDelivered moves a line from pending to delivered. The status guard
// makes the update a compare-and-swap: a concurrent delivery or cancellation
// leaves RowsAffected at zero.
func (r *Repo) SetLineDelivered(ctx context.Context, lineID, entryID id.ID) (bool, error) {
	sql, args, err := r.builder().
		Update(lineTable).
		Set("status", orders.LineStatusDelivered).
		Set("movement_entry_id", entryID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": lineID}).
		Where(squirrel.Eq{"status": orders.LineStatusPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("set line delivered: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// SetLineCancelled moves a line from pending to cancelled.
func (r *Repo) SetLineCancelled(ctx context.Context, lineID id.ID) (bool, error) {
	sql, args, err := r.builder().
		Update(lineTable).
		Set("status", orders.LineStatusCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": lineID}).
		Where(squirrel.Eq{"status": orders.LineStatusPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("set line cancelled: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// List lists orders with lines populated, restricted to the scope.
func (r *Repo) List(ctx context.Context, f orders.ListFilter, scope *security.AccessScope) (domain.ListResult[orders.Order], error) {
	result := domain.ListResult[orders.Order]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.builder().
		Select(orderColumns...).
		From(orderTable)

	if cond := scopeCondition(scope); cond != nil {
		q = q.Where(cond)
	}
	if f.Destination != nil {
		q = q.Where(squirrel.Eq{
			"location_kind": f.Destination.Kind,
			"location_id":   f.Destination.ID,
		})
	}
	if f.RequesterID != nil {
		q = q.Where(squirrel.Eq{"requester_id": *f.RequesterID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count orders: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []orderRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list orders: %w", err)
	}
	if len(rows) == 0 {
		result.Items = []orders.Order{}
		return result, nil
	}

	orderIDs := make([]id.ID, len(rows))
	result.Items = make([]orders.Order, len(rows))
	for i, row := range rows {
		orderIDs[i] = row.ID
		result.Items[i] = row.toOrder()
	}

	lines, err := r.linesByOrders(ctx, orderIDs)
	if err != nil {
		return result, err
	}
	byOrder := make(map[id.ID][]orders.Line, len(rows))
	for _, line := range lines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}
	for i := range result.Items {
		result.Items[i].Lines = byOrder[result.Items[i].ID]
	}
	return result, nil
}

// linesByOrders loads all lines for the given orders, creation order.
func (r *Repo) linesByOrders(ctx context.Context, orderIDs []id.ID) ([]orders.Line, error) {
	sql, args, err := r.builder().
		Select(lineColumns...).
		From(lineTable).
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}

	lines := make([]orders.Line, len(rows))
	for i, row := range rows {
		lines[i] = row.toLine()
	}
	return lines, nil
}

// scopeCondition translates the access scope into a destination predicate.
// Mirrors the ledger predicate: nil or unrestricted scopes see everything,
// an empty scope sees nothing.
func scopeCondition(scope *security.AccessScope) squirrel.Sqlizer {
	if scope == nil || scope.All {
		return nil
	}

	var or squirrel.Or
	if !id.IsNil(scope.RegionID) {
		or = append(or, squirrel.And{
			squirrel.Eq{"location_kind": entity.LocationKindRegion},
			squirrel.Eq{"location_id": scope.RegionID},
		})
	}
	if len(scope.PointOfSaleIDs) > 0 {
		or = append(or, squirrel.And{
			squirrel.Eq{"location_kind": entity.LocationKindPointOfSale},
			squirrel.Eq{"location_id": scope.PointOfSaleIDs},
		})
	}
	if len(or) == 0 {
		return squirrel.Expr("FALSE")
	}
	return or
}
