package orders

import (
	"context"
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/security"
	"github.com/shabani2/salemanagement-api/internal/core/tx"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
	"github.com/shabani2/salemanagement-api/pkg/logger"
)

// NumberGenerator issues sequential human-readable order numbers.
type NumberGenerator interface {
	NextOrderNumber(ctx context.Context) (string, error)
}

// StockRecorder appends delivery movements to the stock ledger. Satisfied by
// the ledger service; calls made inside a transaction join it.
type StockRecorder interface {
	RecordMovement(ctx context.Context, cmd ledger.RecordMovementCommand) (*ledger.Entry, error)
}

// AuditEvent is one fulfillment state change written to the audit trail.
type AuditEvent struct {
	At      time.Time `json:"at"`
	Action  string    `json:"action"`
	OrderID id.ID     `json:"order_id"`
	LineID  id.ID     `json:"line_id"`
	EntryID *id.ID    `json:"entry_id,omitempty"`
	ActorID id.ID     `json:"actor_id"`
}

// AuditTrail records fulfillment events. Writes are best-effort; a failed
// audit write never rolls back the business change.
type AuditTrail interface {
	Record(ctx context.Context, event AuditEvent) error
	History(ctx context.Context, orderID id.ID, limit int) ([]AuditEvent, error)
}

// CreateLineInput is one requested product position.
type CreateLineInput struct {
	ProductID id.ID
	Quantity  types.Quantity
}

// CreateOrderCommand describes a new order.
type CreateOrderCommand struct {
	Destination entity.Location
	Lines       []CreateLineInput

	// RequesterID overrides the authenticated user as requester. Used by
	// seeding; normal callers leave it nil.
	RequesterID *id.ID
}

// Service implements order use cases.
type Service struct {
	repo      Repository
	products  product.Repository
	stock     StockRecorder
	numbers   NumberGenerator
	audit     AuditTrail
	txManager tx.Manager
}

// NewService creates an order service.
func NewService(repo Repository, products product.Repository, stock StockRecorder, numbers NumberGenerator, audit AuditTrail, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		stock:     stock,
		numbers:   numbers,
		audit:     audit,
		txManager: txManager,
	}
}

// Create validates and persists a new order with all lines pending. Line
// unit prices are captured from the product sale price at creation time.
func (s *Service) Create(ctx context.Context, cmd CreateOrderCommand) (*Order, error) {
	if err := cmd.Destination.Validate(ctx); err != nil {
		return nil, err
	}
	if len(cmd.Lines) == 0 {
		return nil, apperror.NewValidation("order requires at least one line")
	}
	for i, l := range cmd.Lines {
		if id.IsNil(l.ProductID) {
			return nil, apperror.NewValidation("line product id is required").WithDetail("line", i)
		}
		if !l.Quantity.IsPositive() {
			return nil, apperror.NewValidation("line quantity must be positive").WithDetail("line", i)
		}
	}

	if scope := security.GetScope(ctx); scope != nil {
		if err := scope.RequireLocation(cmd.Destination); err != nil {
			return nil, err
		}
	}

	requesterID, err := s.resolveRequester(ctx, cmd.RequesterID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]id.ID, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		productIDs = append(productIDs, l.ProductID)
	}
	prods, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for _, l := range cmd.Lines {
		if _, ok := prods[l.ProductID]; !ok {
			return nil, apperror.NewNotFound("product", l.ProductID)
		}
	}

	now := time.Now().UTC()
	order := &Order{
		ID:          id.New(),
		Destination: cmd.Destination,
		RequesterID: requesterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, l := range cmd.Lines {
		prod := prods[l.ProductID]
		order.Lines = append(order.Lines, Line{
			ID:        id.New(),
			OrderID:   order.ID,
			Product:   types.RefOf(l.ProductID, prod),
			Quantity:  l.Quantity,
			UnitPrice: prod.SalePrice,
			Status:    LineStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	// The number is allocated on the transaction so a rollback discards the
	// sequence increment along with the order.
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		number, err := s.numbers.NextOrderNumber(txCtx)
		if err != nil {
			return err
		}
		order.Number = number
		return s.repo.Create(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created",
		"order_id", order.ID,
		"number", order.Number,
		"destination", order.Destination.String(),
		"lines", len(order.Lines),
	)
	return order, nil
}

// Get loads one order with lines and populated product references. Orders
// outside the caller's scope are reported as not found so their existence
// does not leak across regions.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if scope := security.GetScope(ctx); scope != nil {
		if !scope.AllowsLocation(order.Destination) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		if rf := scope.RequesterFilter(); rf != nil && order.RequesterID != *rf {
			return nil, apperror.NewNotFound("order", orderID)
		}
	}
	if err := s.populateProducts(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// List lists orders within the caller's scope. Salespeople see only their
// own orders.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[Order], error) {
	scope := security.GetScope(ctx)
	if f.Destination != nil && scope != nil && !scope.AllowsLocation(*f.Destination) {
		return domain.ListResult[Order]{}, apperror.NewScopeViolation("destination outside access scope")
	}
	if scope != nil {
		if rf := scope.RequesterFilter(); rf != nil {
			f.RequesterID = rf
		}
	}
	if f.Limit <= 0 {
		f.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, f, scope)
}

// DeliverLine fulfills a pending line: it appends a delivery movement to the
// ledger and flips the line to delivered, atomically. The conditional update
// plus the ledger's unique line reference guarantee at most one delivery per
// line even under concurrent requests.
func (s *Service) DeliverLine(ctx context.Context, orderID, lineID id.ID) (*Line, error) {
	var (
		line    *Line
		entryID id.ID
	)
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		line, err = s.repo.GetLineForUpdate(txCtx, lineID)
		if err != nil {
			return err
		}
		if line.OrderID != orderID {
			return apperror.NewNotFound("order line", lineID)
		}

		order, err := s.repo.GetByID(txCtx, line.OrderID)
		if err != nil {
			return err
		}
		if scope := security.GetScope(txCtx); scope != nil {
			if err := scope.RequireLocation(order.Destination); err != nil {
				return err
			}
		}

		switch line.Status {
		case LineStatusDelivered:
			return apperror.NewLineConflict(apperror.CodeLineAlreadyDelivered, lineID)
		case LineStatusCancelled:
			return apperror.NewLineConflict(apperror.CodeLineAlreadyCancelled, lineID)
		}

		amount := line.Total()
		entry, err := s.stock.RecordMovement(txCtx, ledger.RecordMovementCommand{
			ProductID:   line.Product.ID,
			Location:    order.Destination,
			Type:        ledger.TypeDelivery,
			Quantity:    line.Quantity,
			Amount:      &amount,
			OrderLineID: &line.ID,
		})
		if err != nil {
			return err
		}
		entryID = entry.ID

		ok, err := s.repo.SetLineDelivered(txCtx, line.ID, entry.ID)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a concurrent delivery race after the lock was released
			// between retries. The ledger insert rolls back with us.
			return apperror.NewLineConflict(apperror.CodeLineAlreadyDelivered, lineID)
		}

		line.Status = LineStatusDelivered
		line.MovementEntryID = &entryID
		line.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, AuditEvent{
		At:      time.Now().UTC(),
		Action:  "line_delivered",
		OrderID: orderID,
		LineID:  lineID,
		EntryID: &entryID,
		ActorID: actorID(ctx),
	})
	logger.Info(ctx, "order line delivered",
		"order_id", orderID,
		"line_id", lineID,
		"entry_id", entryID,
	)
	return line, nil
}

// CancelLine cancels a pending line. Cancellation has no stock effect; a
// delivered line can not be cancelled.
func (s *Service) CancelLine(ctx context.Context, orderID, lineID id.ID) (*Line, error) {
	var line *Line
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		line, err = s.repo.GetLineForUpdate(txCtx, lineID)
		if err != nil {
			return err
		}
		if line.OrderID != orderID {
			return apperror.NewNotFound("order line", lineID)
		}

		order, err := s.repo.GetByID(txCtx, line.OrderID)
		if err != nil {
			return err
		}
		if scope := security.GetScope(txCtx); scope != nil {
			if err := scope.RequireLocation(order.Destination); err != nil {
				return err
			}
		}

		switch line.Status {
		case LineStatusDelivered:
			return apperror.NewLineConflict(apperror.CodeLineAlreadyDelivered, lineID)
		case LineStatusCancelled:
			return apperror.NewLineConflict(apperror.CodeLineAlreadyCancelled, lineID)
		}

		ok, err := s.repo.SetLineCancelled(txCtx, line.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewLineConflict(apperror.CodeLineAlreadyDelivered, lineID)
		}

		line.Status = LineStatusCancelled
		line.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, AuditEvent{
		At:      time.Now().UTC(),
		Action:  "line_cancelled",
		OrderID: orderID,
		LineID:  lineID,
		ActorID: actorID(ctx),
	})
	logger.Info(ctx, "order line cancelled", "order_id", orderID, "line_id", lineID)
	return line, nil
}

// AuditHistory lists fulfillment events for one order, newest first. Scope
// is enforced the same way as Get, so foreign orders read as not found.
func (s *Service) AuditHistory(ctx context.Context, orderID id.ID, limit int) ([]AuditEvent, error) {
	if _, err := s.Get(ctx, orderID); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.History(ctx, orderID, limit)
}

func (s *Service) resolveRequester(ctx context.Context, override *id.ID) (id.ID, error) {
	if override != nil && !id.IsNil(*override) {
		return *override, nil
	}
	user := appctx.GetUser(ctx)
	if user == nil || id.IsNil(user.UserID) {
		return id.Nil(), apperror.NewUnauthorized("requester identity required")
	}
	return user.UserID, nil
}

func (s *Service) populateProducts(ctx context.Context, order *Order) error {
	ids := make([]id.ID, 0, len(order.Lines))
	for i := range order.Lines {
		if !order.Lines[i].Product.IsPopulated() {
			ids = append(ids, order.Lines[i].Product.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	prods, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range order.Lines {
		if p, ok := prods[order.Lines[i].Product.ID]; ok {
			order.Lines[i].Product.Value = p
		}
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, event AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		logger.Warn(ctx, "audit write failed", "action", event.Action, "error", err)
	}
}

func actorID(ctx context.Context) id.ID {
	if user := appctx.GetUser(ctx); user != nil {
		return user.UserID
	}
	return id.Nil()
}
