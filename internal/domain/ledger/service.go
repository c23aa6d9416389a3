package ledger

import (
	"context"
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/core/tx"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/pkg/config"
	"github.com/shabani2/salemanagement-api/pkg/logger"
)

// LocationChecker verifies that a movement location refers to an existing
// region or point of sale. The central depot always exists.
type LocationChecker interface {
	LocationExists(ctx context.Context, loc entity.Location) (bool, error)
}

// RecordMovementCommand describes one stock movement to append.
type RecordMovementCommand struct {
	ProductID id.ID
	Location  entity.Location
	Type      MovementType
	Quantity  types.Quantity

	// Amount overrides the computed value when set. When nil the amount is
	// quantity times the product sale price for sales, purchase price for
	// every other type.
	Amount *types.Money

	// Status defaults to validated when empty.
	Status MovementStatus

	// OrderLineID links a delivery movement to the order line it fulfills.
	OrderLineID *id.ID
}

// Service implements ledger use cases.
type Service struct {
	repo      Repository
	products  product.Repository
	locations LocationChecker
	txManager tx.Manager
	policy    config.StockPolicy
}

// NewService creates a ledger service.
func NewService(repo Repository, products product.Repository, locations LocationChecker, txManager tx.Manager, policy config.StockPolicy) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		locations: locations,
		txManager: txManager,
		policy:    policy,
	}
}

// RecordMovement validates, values and appends one ledger entry, then
// applies its delta to the snapshot. Runs in a transaction; when the caller
// already opened one (order delivery does), the same transaction is reused.
func (s *Service) RecordMovement(ctx context.Context, cmd RecordMovementCommand) (*Entry, error) {
	if err := s.validateCommand(ctx, cmd); err != nil {
		return nil, err
	}
	if scope := security.GetScope(ctx); scope != nil {
		if err := scope.RequireLocation(cmd.Location); err != nil {
			return nil, err
		}
	}

	var entry *Entry
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		prod, err := s.products.GetByID(txCtx, cmd.ProductID)
		if err != nil {
			return err
		}
		ok, err := s.locations.LocationExists(txCtx, cmd.Location)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewNotFound("location", cmd.Location.String())
		}

		snap, err := s.repo.GetSnapshotForUpdate(txCtx, cmd.ProductID, cmd.Location)
		if err != nil {
			return err
		}

		if cmd.Type.IsOutbound() && snap.Quantity < cmd.Quantity {
			if s.policy == config.StockPolicyBlock {
				return apperror.NewInsufficientStock(cmd.ProductID.String(), cmd.Quantity.Int64(), snap.Quantity.Int64())
			}
			logger.Warn(txCtx, "stock going negative",
				"product_id", cmd.ProductID,
				"location", cmd.Location.String(),
				"available", snap.Quantity,
				"requested", cmd.Quantity,
			)
		}

		amount := s.valueOf(cmd, prod)
		status := cmd.Status
		if status == "" {
			status = MovementStatusValidated
		}

		entry = &Entry{
			ID:          id.New(),
			ProductID:   cmd.ProductID,
			Location:    cmd.Location,
			Type:        cmd.Type,
			Quantity:    cmd.Quantity,
			Amount:      amount,
			Status:      status,
			OrderLineID: cmd.OrderLineID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.repo.InsertEntry(txCtx, entry); err != nil {
			return err
		}

		qtyDelta := entry.SignedQuantity().Int64()
		amountDelta := amount
		if cmd.Type.IsOutbound() {
			amountDelta = amount.Neg()
		}
		return s.repo.ApplySnapshotDelta(txCtx, cmd.ProductID, cmd.Location, qtyDelta, amountDelta)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement recorded",
		"entry_id", entry.ID,
		"product_id", entry.ProductID,
		"type", entry.Type,
		"quantity", entry.Quantity,
	)
	return entry, nil
}

// Query lists ledger entries within the caller's scope. An explicit location
// filter outside the scope is rejected rather than silently emptied.
func (s *Service) Query(ctx context.Context, f QueryFilter) (domain.ListResult[Entry], error) {
	scope := security.GetScope(ctx)
	if f.Location != nil && scope != nil && !scope.AllowsLocation(*f.Location) {
		return domain.ListResult[Entry]{}, apperror.NewScopeViolation("location outside access scope: " + f.Location.String())
	}
	if f.Limit == 0 {
		f.Limit = domain.DefaultListFilter().Limit
	} else if f.Limit < 0 {
		f.Limit = 0 // unbounded, aggregation reads
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at DESC"
	}
	return s.repo.Query(ctx, f, scope)
}

// QueryAll returns every entry matching the filter without pagination.
// Used by the aggregation engine over a bounded time window.
func (s *Service) QueryAll(ctx context.Context, f QueryFilter) ([]Entry, error) {
	f.Limit = -1
	f.Offset = 0
	res, err := s.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// ListSnapshots lists current stock within the caller's scope.
func (s *Service) ListSnapshots(ctx context.Context, f SnapshotFilter) (domain.ListResult[Snapshot], error) {
	scope := security.GetScope(ctx)
	if f.Location != nil && scope != nil && !scope.AllowsLocation(*f.Location) {
		return domain.ListResult[Snapshot]{}, apperror.NewScopeViolation("location outside access scope: " + f.Location.String())
	}
	if f.Limit <= 0 {
		f.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.ListSnapshots(ctx, f, scope)
}

func (s *Service) validateCommand(ctx context.Context, cmd RecordMovementCommand) error {
	if id.IsNil(cmd.ProductID) {
		return apperror.NewValidation("product id is required")
	}
	if err := cmd.Location.Validate(ctx); err != nil {
		return err
	}
	if !cmd.Type.IsValid() {
		return apperror.NewValidation("unknown movement type").WithDetail("type", string(cmd.Type))
	}
	if !cmd.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("quantity", cmd.Quantity)
	}
	if cmd.Status != "" && cmd.Status != MovementStatusPending && cmd.Status != MovementStatusValidated {
		return apperror.NewValidation("unknown movement status").WithDetail("status", string(cmd.Status))
	}
	if cmd.OrderLineID != nil && cmd.Type != TypeDelivery {
		return apperror.NewValidation("order line reference is only valid for deliveries")
	}
	return nil
}

func (s *Service) valueOf(cmd RecordMovementCommand, prod *product.Product) types.Money {
	if cmd.Amount != nil {
		return *cmd.Amount
	}
	unit := prod.PurchasePrice
	if cmd.Type == TypeSale {
		unit = prod.SalePrice
	}
	return unit.Mul(types.MoneyFromInt(cmd.Quantity.Int64()))
}

