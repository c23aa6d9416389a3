package order_repo

import (
	"context"
	"time"

	"github.com/shabani2/salemanagement-api/internal/domain/orders"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
	"github.com/shabani2/salemanagement-api/pkg/numerator"
)

// OrderNumbers issues ORD-prefixed sequential numbers backed by the shared
// database sequence table. The counter resets yearly.
type OrderNumbers struct {
	txManager *postgres.TxManager
	cfg       numerator.Config
}

var _ orders.NumberGenerator = (*OrderNumbers)(nil)

// NewOrderNumbers creates a new order number generator.
func NewOrderNumbers(txManager *postgres.TxManager) *OrderNumbers {
	return &OrderNumbers{
		txManager: txManager,
		cfg:       numerator.DefaultConfig("ORD"),
	}
}

// NextOrderNumber returns the next order number. Inside a transaction the
// sequence increment rolls back with the order.
func (n *OrderNumbers) NextOrderNumber(ctx context.Context) (string, error) {
	svc := numerator.New(n.txManager.GetQuerier(ctx))
	return svc.GetNextNumber(ctx, n.cfg, time.Now().UTC())
}
