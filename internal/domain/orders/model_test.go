package orders

import (
	"testing"

	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
)

func linesWith(statuses ...LineStatus) []Line {
	lines := make([]Line, len(statuses))
	for i, st := range statuses {
		lines[i] = Line{ID: id.New(), Status: st, Quantity: 1, UnitPrice: types.MustMoney("10")}
	}
	return lines
}

func TestOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []LineStatus
		want     OrderStatus
	}{
		{"no lines", nil, OrderStatusPending},
		{"all pending", []LineStatus{LineStatusPending, LineStatusPending}, OrderStatusPending},
		{"some delivered", []LineStatus{LineStatusDelivered, LineStatusPending}, OrderStatusPending},
		{"all delivered", []LineStatus{LineStatusDelivered, LineStatusDelivered}, OrderStatusDelivered},
		{"delivered plus cancelled", []LineStatus{LineStatusDelivered, LineStatusCancelled}, OrderStatusPending},
		{"all cancelled", []LineStatus{LineStatusCancelled, LineStatusCancelled}, OrderStatusCancelled},
		{"cancelled plus pending", []LineStatus{LineStatusCancelled, LineStatusPending}, OrderStatusPending},
		{"mixed all three", []LineStatus{LineStatusDelivered, LineStatusCancelled, LineStatusPending}, OrderStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Lines: linesWith(tt.statuses...)}
			if got := o.Status(); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOrderTotals(t *testing.T) {
	o := &Order{Lines: []Line{
		{Status: LineStatusPending, Quantity: 2, UnitPrice: types.MustMoney("10.50")},
		{Status: LineStatusDelivered, Quantity: 3, UnitPrice: types.MustMoney("4.00")},
		{Status: LineStatusCancelled, Quantity: 100, UnitPrice: types.MustMoney("999")},
	}}

	if want := types.MustMoney("33"); !o.Total().Equal(want) {
		t.Errorf("Total() = %s, want %s", o.Total(), want)
	}
	if got := o.OrderedQuantity(); got != 5 {
		t.Errorf("OrderedQuantity() = %d, want 5", got)
	}
	if got := o.DeliveredQuantity(); got != 3 {
		t.Errorf("DeliveredQuantity() = %d, want 3", got)
	}
}
