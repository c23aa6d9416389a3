package dto

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/orders"
)

// CreateOrderLineRequest is one product position on a new order.
type CreateOrderLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest is the request body for creating an order.
type CreateOrderRequest struct {
	Destination LocationDTO              `json:"destination" binding:"required"`
	Lines       []CreateOrderLineRequest `json:"lines" binding:"required,min=1"`
}

// ToCommand converts the request to a domain command.
func (r *CreateOrderRequest) ToCommand() (orders.CreateOrderCommand, error) {
	dest, err := r.Destination.ToLocation()
	if err != nil {
		return orders.CreateOrderCommand{}, err
	}

	cmd := orders.CreateOrderCommand{
		Destination: dest,
		Lines:       make([]orders.CreateLineInput, len(r.Lines)),
	}
	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return orders.CreateOrderCommand{}, apperror.NewValidation("invalid product id").
				WithDetail("productId", line.ProductID)
		}
		cmd.Lines[i] = orders.CreateLineInput{
			ProductID: productID,
			Quantity:  types.Quantity(line.Quantity),
		}
	}
	return cmd, nil
}

// OrderListQuery filters the order listing.
type OrderListQuery struct {
	LocationKind string     `form:"locationKind"`
	LocationID   string     `form:"locationId"`
	From         *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To           *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

// ToFilter converts the query to a domain filter.
func (q *OrderListQuery) ToFilter() (orders.ListFilter, error) {
	f := orders.ListFilter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.LocationKind != "" {
		loc, err := LocationDTO{Kind: q.LocationKind, ID: q.LocationID}.ToLocation()
		if err != nil {
			return f, err
		}
		f.Destination = &loc
	}
	return f, nil
}

// OrderLineResponse is the wire shape of one order line.
type OrderLineResponse struct {
	ID              string      `json:"id"`
	ProductID       string      `json:"productId"`
	ProductName     string      `json:"productName,omitempty"`
	Quantity        int64       `json:"quantity"`
	UnitPrice       types.Money `json:"unitPrice"`
	Total           types.Money `json:"total"`
	Status          string      `json:"status"`
	MovementEntryID *string     `json:"movementEntryId,omitempty"`
}

// OrderResponse is the wire shape of an order. Status is derived from the
// line states at render time.
type OrderResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	Destination LocationDTO         `json:"destination"`
	RequesterID string              `json:"requesterId"`
	Status      string              `json:"status"`
	Total       types.Money         `json:"total"`
	Lines       []OrderLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// FromOrder converts an order to its wire shape.
func FromOrder(o *orders.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID.String(),
		Number:      o.Number,
		Destination: FromLocation(o.Destination),
		RequesterID: o.RequesterID.String(),
		Status:      string(o.Status()),
		Total:       o.Total(),
		Lines:       make([]OrderLineResponse, len(o.Lines)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for i := range o.Lines {
		resp.Lines[i] = fromLine(&o.Lines[i])
	}
	return resp
}

// FromOrders converts a slice of orders.
func FromOrders(items []orders.Order) []OrderResponse {
	out := make([]OrderResponse, len(items))
	for i := range items {
		out[i] = FromOrder(&items[i])
	}
	return out
}

// FromLine converts one line to its wire shape.
func FromLine(l *orders.Line) OrderLineResponse {
	return fromLine(l)
}

func fromLine(l *orders.Line) OrderLineResponse {
	resp := OrderLineResponse{
		ID:        l.ID.String(),
		ProductID: l.Product.ID.String(),
		Quantity:  l.Quantity.Int64(),
		UnitPrice: l.UnitPrice,
		Total:     l.Total(),
		Status:    string(l.Status),
	}
	if l.Product.Value != nil {
		resp.ProductName = l.Product.Value.Name
	}
	if l.MovementEntryID != nil {
		s := l.MovementEntryID.String()
		resp.MovementEntryID = &s
	}
	return resp
}
