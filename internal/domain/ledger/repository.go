package ledger

import (
	"context"
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain"
)

// QueryFilter narrows ledger entry queries. Zero values mean "no filter".
type QueryFilter struct {
	ProductID   *id.ID
	Location    *entity.Location
	Types       []MovementType
	Status      *MovementStatus
	OrderLineID *id.ID
	From        *time.Time // inclusive
	To          *time.Time // exclusive

	OrderBy string
	Limit   int // 0 means unbounded (used by aggregation reads)
	Offset  int
}

// SnapshotFilter narrows snapshot listings.
type SnapshotFilter struct {
	ProductID *id.ID
	Location  *entity.Location

	// BelowReorderThreshold keeps only snapshots whose quantity is at or
	// below the product reorder threshold.
	BelowReorderThreshold bool

	Limit  int
	Offset int
}

// Repository is the persistence port for the ledger. The access scope is
// passed to reads so location predicates are applied in SQL rather than
// post-filtered in memory.
type Repository interface {
	// InsertEntry appends one immutable entry.
	InsertEntry(ctx context.Context, e *Entry) error

	// GetSnapshotForUpdate loads the snapshot row under a row lock, or a
	// zero-quantity snapshot when none exists yet. Must run inside a
	// transaction.
	GetSnapshotForUpdate(ctx context.Context, productID id.ID, loc entity.Location) (*Snapshot, error)

	// ApplySnapshotDelta upserts the snapshot, adding the signed quantity
	// and amount deltas.
	ApplySnapshotDelta(ctx context.Context, productID id.ID, loc entity.Location, qtyDelta int64, amountDelta types.Money) error

	// Query lists entries matching the filter, restricted to the scope.
	Query(ctx context.Context, f QueryFilter, scope *security.AccessScope) (domain.ListResult[Entry], error)

	// ListSnapshots lists snapshots matching the filter, restricted to the
	// scope.
	ListSnapshots(ctx context.Context, f SnapshotFilter, scope *security.AccessScope) (domain.ListResult[Snapshot], error)
}
