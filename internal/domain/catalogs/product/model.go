// Package product provides the Product catalog.
package product

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/types"
)

// Product is reference data owned by the catalog: the fulfillment core reads
// prices and thresholds but never mutates products.
type Product struct {
	entity.BaseCatalog

	Name string `db:"name" json:"name"`

	// PurchasePrice values inbound and non-sale outbound movements.
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// SalePrice values Sale movements.
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// VATRate in percent.
	VATRate types.Money `db:"vat_rate" json:"vatRate"`

	// ReorderThreshold triggers low-stock indicators in reports.
	ReorderThreshold types.Quantity `db:"reorder_threshold" json:"reorderThreshold"`

	// Unit is the unit of measure label (piece, box, liter).
	Unit string `db:"unit" json:"unit"`
}

// New creates a product with generated id.
func New(name string, purchasePrice, salePrice types.Money, unit string) *Product {
	return &Product{
		BaseCatalog:   entity.NewBaseCatalog(),
		Name:          name,
		PurchasePrice: purchasePrice,
		SalePrice:     salePrice,
		Unit:          unit,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price must not be negative").
			WithDetail("field", "purchasePrice")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price must not be negative").
			WithDetail("field", "salePrice")
	}
	if p.ReorderThreshold < 0 {
		return apperror.NewValidation("reorder threshold must not be negative").
			WithDetail("field", "reorderThreshold")
	}
	return nil
}
