package orders

import (
	"context"
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/domain"
)

// ListFilter narrows order listings.
type ListFilter struct {
	Destination *entity.Location
	RequesterID *id.ID
	From        *time.Time
	To          *time.Time

	Limit  int
	Offset int
}

// Repository is the persistence port for orders.
type Repository interface {
	// Create inserts the order and its lines in one statement batch.
	Create(ctx context.Context, o *Order) error

	// GetByID loads the order with all its lines.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetLine loads a single line.
	GetLine(ctx context.Context, lineID id.ID) (*Line, error)

	// GetLineForUpdate loads a line under a row lock. Must run inside a
	// transaction.
	GetLineForUpdate(ctx context.Context, lineID id.ID) (*Line, error)

	// SetLineDelivered moves a line from pending to delivered and records
	// the fulfilling ledger entry. The update is conditional on the line
	// still being pending; returns false when another transaction won.
	SetLineDelivered(ctx context.Context, lineID, entryID id.ID) (bool, error)

	// SetLineCancelled moves a line from pending to cancelled, conditional
	// on the line still being pending.
	SetLineCancelled(ctx context.Context, lineID id.ID) (bool, error)

	// List lists orders (lines populated) restricted to the scope.
	List(ctx context.Context, f ListFilter, scope *security.AccessScope) (domain.ListResult[Order], error)
}
