// Package ledger provides the append-only stock movement ledger and the
// derived per-(product, location) stock snapshots.
package ledger

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	// TypeEntry brings stock into a location.
	TypeEntry MovementType = "entry"
	// TypeExit removes stock without a sale (loss, transfer out, manual).
	TypeExit MovementType = "exit"
	// TypeSale removes stock against a sale; valued at sale price.
	TypeSale MovementType = "sale"
	// TypeDelivery removes stock to fulfill an order line.
	TypeDelivery MovementType = "delivery"
	// TypeOrder records an order used as a consumption signal.
	TypeOrder MovementType = "order"
)

// IsValid reports whether the type is one of the known movement types.
func (t MovementType) IsValid() bool {
	switch t {
	case TypeEntry, TypeExit, TypeSale, TypeDelivery, TypeOrder:
		return true
	}
	return false
}

// IsOutbound reports whether the type decreases stock at its location.
// Only entry increases stock.
func (t MovementType) IsOutbound() bool {
	return t != TypeEntry
}

// MovementStatus is the unified typed status for ledger entries.
// The source system mixed a boolean flag with label strings; the storage
// layer maps both legacy spellings onto this enum.
type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "pending"
	MovementStatusValidated MovementStatus = "validated"
)

// Entry is an immutable ledger record of one stock change. Corrections are
// made by new compensating entries, never by editing.
type Entry struct {
	ID        id.ID           `db:"id" json:"id"`
	ProductID id.ID           `db:"product_id" json:"productId"`
	Location  entity.Location `db:"" json:"location"`
	Type      MovementType    `db:"type" json:"type"`
	Quantity  types.Quantity  `db:"quantity" json:"quantity"`
	Amount    types.Money     `db:"amount" json:"amount"`
	Status    MovementStatus  `db:"status" json:"status"`

	// OrderLineID is set iff Type == delivery and the movement fulfills an
	// order line. At most one entry may reference a given line.
	OrderLineID *id.ID `db:"order_line_id" json:"orderLineId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedQuantity returns quantity with sign based on movement direction.
func (e *Entry) SignedQuantity() types.Quantity {
	if e.Type.IsOutbound() {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// Snapshot is the derived current stock for one (product, location) key.
// Mutated only by ledger entry application, never directly by callers.
type Snapshot struct {
	ProductID id.ID           `db:"product_id" json:"productId"`
	Location  entity.Location `db:"" json:"location"`
	Quantity  types.Quantity  `db:"quantity" json:"quantity"`
	Amount    types.Money     `db:"amount" json:"amount"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}
