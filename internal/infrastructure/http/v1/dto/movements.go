package dto

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// RecordMovementRequest is the request body for recording a stock movement.
type RecordMovementRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	Location  LocationDTO `json:"location" binding:"required"`
	Type      string      `json:"type" binding:"required"`
	Quantity  int64       `json:"quantity" binding:"required,min=1"`

	// Amount overrides the computed valuation when present.
	Amount *types.Money `json:"amount"`

	// Status defaults to validated.
	Status string `json:"status"`
}

// ToCommand converts the request to a domain command.
func (r *RecordMovementRequest) ToCommand() (ledger.RecordMovementCommand, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return ledger.RecordMovementCommand{}, apperror.NewValidation("invalid product id").
			WithDetail("productId", r.ProductID)
	}

	loc, err := r.Location.ToLocation()
	if err != nil {
		return ledger.RecordMovementCommand{}, err
	}

	return ledger.RecordMovementCommand{
		ProductID: productID,
		Location:  loc,
		Type:      ledger.MovementType(r.Type),
		Quantity:  types.Quantity(r.Quantity),
		Amount:    r.Amount,
		Status:    ledger.MovementStatus(r.Status),
	}, nil
}

// MovementListQuery filters the movement listing.
type MovementListQuery struct {
	ProductID    string     `form:"productId"`
	LocationKind string     `form:"locationKind"`
	LocationID   string     `form:"locationId"`
	Types        []string   `form:"type"`
	Status       string     `form:"status"`
	From         *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To           *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	OrderBy      string     `form:"orderBy"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

// ToFilter converts the query to a domain filter.
func (q *MovementListQuery) ToFilter() (ledger.QueryFilter, error) {
	f := ledger.QueryFilter{
		From:    q.From,
		To:      q.To,
		OrderBy: q.OrderBy,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}

	if q.ProductID != "" {
		productID, err := id.Parse(q.ProductID)
		if err != nil {
			return f, apperror.NewValidation("invalid product id").
				WithDetail("productId", q.ProductID)
		}
		f.ProductID = &productID
	}
	if q.LocationKind != "" {
		loc, err := LocationDTO{Kind: q.LocationKind, ID: q.LocationID}.ToLocation()
		if err != nil {
			return f, err
		}
		f.Location = &loc
	}
	for _, t := range q.Types {
		f.Types = append(f.Types, ledger.MovementType(t))
	}
	if q.Status != "" {
		status := ledger.MovementStatus(q.Status)
		f.Status = &status
	}
	return f, nil
}

// MovementResponse is the wire shape of one ledger entry.
type MovementResponse struct {
	ID        string      `json:"id"`
	ProductID string      `json:"productId"`
	Location  LocationDTO `json:"location"`
	Type      string      `json:"type"`
	Quantity  int64       `json:"quantity"`
	Amount    types.Money `json:"amount"`
	Status    string      `json:"status"`
	LineID    *string     `json:"orderLineId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// FromEntry converts a ledger entry to its wire shape.
func FromEntry(e *ledger.Entry) MovementResponse {
	resp := MovementResponse{
		ID:        e.ID.String(),
		ProductID: e.ProductID.String(),
		Location:  FromLocation(e.Location),
		Type:      string(e.Type),
		Quantity:  e.Quantity.Int64(),
		Amount:    e.Amount,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
	if e.OrderLineID != nil {
		s := e.OrderLineID.String()
		resp.LineID = &s
	}
	return resp
}

// FromEntries converts a slice of ledger entries.
func FromEntries(entries []ledger.Entry) []MovementResponse {
	out := make([]MovementResponse, len(entries))
	for i := range entries {
		out[i] = FromEntry(&entries[i])
	}
	return out
}
