// Package ledger_repo provides the PostgreSQL implementation of the stock
// movement ledger and snapshot persistence.
package ledger_repo

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
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
)

const (
	entryTable    = "movement_entries"
	snapshotTable = "stock_snapshots"
)

var entryColumns = []string{
	"id", "product_id", "location_kind", "location_id",
	"type", "quantity", "amount", "status", "order_line_id", "created_at",
}

var snapshotColumns = []string{
	"product_id", "location_kind", "location_id", "quantity", "amount", "updated_at",
}

// entryRow flattens the location key for scanning. The domain model carries
// a tagged Location; the table stores kind and id columns.
type entryRow struct {
	ID           id.ID                 `db:"id"`
	ProductID    id.ID                 `db:"product_id"`
	LocationKind entity.LocationKind   `db:"location_kind"`
	LocationID   id.ID                 `db:"location_id"`
	Type         ledger.MovementType   `db:"type"`
	Quantity     types.Quantity        `db:"quantity"`
	Amount       types.Money           `db:"amount"`
	Status       ledger.MovementStatus `db:"status"`
	OrderLineID  *id.ID                `db:"order_line_id"`
	CreatedAt    time.Time             `db:"created_at"`
}

func (r entryRow) toEntry() ledger.Entry {
	return ledger.Entry{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Location:    entity.Location{Kind: r.LocationKind, ID: r.LocationID},
		Type:        r.Type,
		Quantity:    r.Quantity,
		Amount:      r.Amount,
		Status:      r.Status,
		OrderLineID: r.OrderLineID,
		CreatedAt:   r.CreatedAt,
	}
}

type snapshotRow struct {
	ProductID    id.ID               `db:"product_id"`
	LocationKind entity.LocationKind `db:"location_kind"`
	LocationID   id.ID               `db:"location_id"`
	Quantity     types.Quantity      `db:"quantity"`
	Amount       types.Money         `db:"amount"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

func (r snapshotRow) toSnapshot() ledger.Snapshot {
	return ledger.Snapshot{
		ProductID: r.ProductID,
		Location:  entity.Location{Kind: r.LocationKind, ID: r.LocationID},
		Quantity:  r.Quantity,
		Amount:    r.Amount,
		UpdatedAt: r.UpdatedAt,
	}
}

// Repo implements ledger.Repository. The central depot is stored with the
// nil uuid as location_id so the snapshot primary key stays NOT NULL.
type Repo struct {
	txManager *postgres.TxManager
}

var _ ledger.Repository = (*Repo)(nil)

// NewRepo creates a new ledger repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// InsertEntry appends one immutable ledger entry.
func (r *Repo) InsertEntry(ctx context.Context, e *ledger.Entry) error {
	q := r.builder().
		Insert(entryTable).
		Columns(entryColumns...).
		Values(
			e.ID, e.ProductID, e.Location.Kind, e.Location.ID,
			e.Type, e.Quantity, e.Amount, e.Status, e.OrderLineID, e.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement entry: %w", err)
	}
	return nil
}

// GetSnapshotForUpdate loads the snapshot row under FOR UPDATE, or returns a
// zero snapshot when none exists. Must run inside a transaction so the lock
// is held until the caller commits.
func (r *Repo) GetSnapshotForUpdate(ctx context.Context, productID id.ID, loc entity.Location) (*ledger.Snapshot, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("snapshot lock requires a transaction")
	}

	q := r.builder().
		Select(snapshotColumns...).
		From(snapshotTable).
		Where(locationEq(loc)).
		Where(squirrel.Eq{"product_id": productID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row snapshotRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return &ledger.Snapshot{
				ProductID: productID,
				Location:  loc,
				Amount:    types.ZeroMoney(),
			}, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap := row.toSnapshot()
	return &snap, nil
}

// ApplySnapshotDelta upserts the snapshot, adding the signed deltas.
func (r *Repo) ApplySnapshotDelta(ctx context.Context, productID id.ID, loc entity.Location, qtyDelta int64, amountDelta types.Money) error {
	sql := `INSERT INTO ` + snapshotTable + `
		(product_id, location_kind, location_id, quantity, amount, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, location_kind, location_id)
		DO UPDATE SET
			quantity = ` + snapshotTable + `.quantity + EXCLUDED.quantity,
			amount = ` + snapshotTable + `.amount + EXCLUDED.amount,
			updated_at = now()`

	_, err := r.querier(ctx).Exec(ctx, sql, productID, loc.Kind, loc.ID, qtyDelta, amountDelta)
	if err != nil {
		return fmt.Errorf("apply snapshot delta: %w", err)
	}
	return nil
}

// Query lists ledger entries matching the filter, with the access scope
// conjoined as a location predicate.
func (r *Repo) Query(ctx context.Context, f ledger.QueryFilter, scope *security.AccessScope) (domain.ListResult[ledger.Entry], error) {
	result := domain.ListResult[ledger.Entry]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.builder().
		Select(entryColumns...).
		From(entryTable)

	if cond := scopeCondition(scope, ""); cond != nil {
		q = q.Where(cond)
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Location != nil {
		q = q.Where(locationEq(*f.Location))
	}
	if len(f.Types) > 0 {
		q = q.Where(squirrel.Eq{"type": f.Types})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.OrderLineID != nil {
		q = q.Where(squirrel.Eq{"order_line_id": *f.OrderLineID})
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
		return result, fmt.Errorf("count entries: %w", err)
	}

	orderBy, err := parseEntryOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

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

	var rows []entryRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("query entries: %w", err)
	}
	result.Items = make([]ledger.Entry, len(rows))
	for i, row := range rows {
		result.Items[i] = row.toEntry()
	}
	return result, nil
}

// ListSnapshots lists stock snapshots matching the filter, restricted to
// the scope. BelowReorderThreshold joins the product catalog.
func (r *Repo) ListSnapshots(ctx context.Context, f ledger.SnapshotFilter, scope *security.AccessScope) (domain.ListResult[ledger.Snapshot], error) {
	result := domain.ListResult[ledger.Snapshot]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	cols := make([]string, len(snapshotColumns))
	for i, c := range snapshotColumns {
		cols[i] = "s." + c
	}

	q := r.builder().
		Select(cols...).
		From(snapshotTable + " s")

	if f.BelowReorderThreshold {
		q = q.Join("cat_products p ON p.id = s.product_id").
			Where(squirrel.Expr("s.quantity <= p.reorder_threshold"))
	}
	if cond := scopeCondition(scope, "s."); cond != nil {
		q = q.Where(cond)
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"s.product_id": *f.ProductID})
	}
	if f.Location != nil {
		q = q.Where(squirrel.Eq{
			"s.location_kind": f.Location.Kind,
			"s.location_id":   f.Location.ID,
		})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count snapshots: %w", err)
	}

	q = q.OrderBy("s.location_kind", "s.location_id", "s.product_id")
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

	var rows []snapshotRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list snapshots: %w", err)
	}
	result.Items = make([]ledger.Snapshot, len(rows))
	for i, row := range rows {
		result.Items[i] = row.toSnapshot()
	}
	return result, nil
}

// locationEq builds the equality predicate for one location key.
func locationEq(loc entity.Location) squirrel.Eq {
	return squirrel.Eq{
		"location_kind": loc.Kind,
		"location_id":   loc.ID,
	}
}

// scopeCondition translates an access scope into a location predicate over
// (location_kind, location_id), optionally qualified with a table alias.
// Nil scope (internal caller) and unrestricted scopes get no predicate.
// A scope that allows nothing yields a contradiction rather than an open
// query.
func scopeCondition(scope *security.AccessScope, prefix string) squirrel.Sqlizer {
	if scope == nil || scope.All {
		return nil
	}

	kindCol := prefix + "location_kind"
	idCol := prefix + "location_id"

	var or squirrel.Or
	if !id.IsNil(scope.RegionID) {
		or = append(or, squirrel.And{
			squirrel.Eq{kindCol: entity.LocationKindRegion},
			squirrel.Eq{idCol: scope.RegionID},
		})
	}
	if len(scope.PointOfSaleIDs) > 0 {
		or = append(or, squirrel.And{
			squirrel.Eq{kindCol: entity.LocationKindPointOfSale},
			squirrel.Eq{idCol: scope.PointOfSaleIDs},
		})
	}
	if len(or) == 0 {
		return squirrel.Expr("FALSE")
	}
	return or
}

func parseEntryOrderBy(orderBy string) (string, error) {
	switch orderBy {
	case "", "created_at DESC":
		return "created_at DESC", nil
	case "created_at", "created_at ASC":
		return "created_at ASC", nil
	}
	return "", apperror.NewValidation("unknown order by column").WithDetail("orderBy", orderBy)
}
