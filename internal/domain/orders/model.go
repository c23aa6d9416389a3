// Package orders implements order capture and per-line fulfillment.
package orders

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
)

// LineStatus is the fulfillment state of one order line. Pending is the only
// state a line can leave; delivered and cancelled are terminal.
type LineStatus string

const (
	LineStatusPending   LineStatus = "pending"
	LineStatusDelivered LineStatus = "delivered"
	LineStatusCancelled LineStatus = "cancelled"
)

// OrderStatus is a projection computed from line states. It is never stored;
// persisting it invites drift from the lines under concurrent delivery.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Line is one product position on an order.
type Line struct {
	ID       id.ID                      `db:"id" json:"id"`
	OrderID  id.ID                      `db:"order_id" json:"orderId"`
	Product  types.Ref[product.Product] `db:"product_id" json:"product"`
	Quantity types.Quantity             `db:"quantity" json:"quantity"`

	// UnitPrice is the sale price captured at order creation.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	Status LineStatus `db:"status" json:"status"`

	// MovementEntryID references the ledger entry that fulfilled this line.
	// Set iff Status == delivered.
	MovementEntryID *id.ID `db:"movement_entry_id" json:"movementEntryId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Total returns quantity times unit price.
func (l *Line) Total() types.Money {
	return l.UnitPrice.Mul(types.MoneyFromInt(l.Quantity.Int64()))
}

// Order is a request for stock to be delivered to a destination.
type Order struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	// Destination is where the goods must go. Exactly one of the three
	// location kinds.
	Destination entity.Location `db:"" json:"destination"`

	// RequesterID is the user who placed the order.
	RequesterID id.ID `db:"requester_id" json:"requesterId"`

	Lines []Line `db:"-" json:"lines"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Status derives the order state from its lines.
//
//	delivered  when every line is delivered
//	cancelled  when every line is cancelled
//	pending    otherwise, mixed states included (an order with no lines too)
func (o *Order) Status() OrderStatus {
	if len(o.Lines) == 0 {
		return OrderStatusPending
	}

	var delivered, cancelled int
	for i := range o.Lines {
		switch o.Lines[i].Status {
		case LineStatusDelivered:
			delivered++
		case LineStatusCancelled:
			cancelled++
		}
	}

	switch {
	case delivered == len(o.Lines):
		return OrderStatusDelivered
	case cancelled == len(o.Lines):
		return OrderStatusCancelled
	default:
		return OrderStatusPending
	}
}

// Total sums non-cancelled line totals.
func (o *Order) Total() types.Money {
	total := types.ZeroMoney()
	for i := range o.Lines {
		if o.Lines[i].Status == LineStatusCancelled {
			continue
		}
		total = total.Add(o.Lines[i].Total())
	}
	return total
}

// OrderedQuantity sums quantities across non-cancelled lines.
func (o *Order) OrderedQuantity() types.Quantity {
	var q types.Quantity
	for i := range o.Lines {
		if o.Lines[i].Status == LineStatusCancelled {
			continue
		}
		q += o.Lines[i].Quantity
	}
	return q
}

// DeliveredQuantity sums quantities across delivered lines.
func (o *Order) DeliveredQuantity() types.Quantity {
	var q types.Quantity
	for i := range o.Lines {
		if o.Lines[i].Status == LineStatusDelivered {
			q += o.Lines[i].Quantity
		}
	}
	return q
}
