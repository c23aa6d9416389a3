package dto

import (
	"time"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
)

// StockListQuery filters the stock snapshot listing.
type StockListQuery struct {
	ProductID    string `form:"productId"`
	LocationKind string `form:"locationKind"`
	LocationID   string `form:"locationId"`
	BelowReorder bool   `form:"belowReorder"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// ToFilter converts the query to a domain filter.
func (q *StockListQuery) ToFilter() (ledger.SnapshotFilter, error) {
	f := ledger.SnapshotFilter{
		BelowReorderThreshold: q.BelowReorder,
		Limit:                 q.Limit,
		Offset:                q.Offset,
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
	return f, nil
}

// StockResponse is the wire shape of one stock snapshot.
type StockResponse struct {
	ProductID string      `json:"productId"`
	Location  LocationDTO `json:"location"`
	Quantity  int64       `json:"quantity"`
	Amount    types.Money `json:"amount"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FromSnapshot converts a snapshot to its wire shape.
func FromSnapshot(s *ledger.Snapshot) StockResponse {
	return StockResponse{
		ProductID: s.ProductID.String(),
		Location:  FromLocation(s.Location),
		Quantity:  s.Quantity.Int64(),
		Amount:    s.Amount,
		UpdatedAt: s.UpdatedAt,
	}
}

// FromSnapshots converts a slice of snapshots.
func FromSnapshots(snaps []ledger.Snapshot) []StockResponse {
	out := make([]StockResponse, len(snaps))
	for i := range snaps {
		out[i] = FromSnapshot(&snaps[i])
	}
	return out
}
