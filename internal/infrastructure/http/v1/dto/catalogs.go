package dto

import (
	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/pointofsale"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/region"
)

// --- Products ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Name             string      `json:"name" binding:"required"`
	PurchasePrice    types.Money `json:"purchasePrice"`
	SalePrice        types.Money `json:"salePrice"`
	VATRate          types.Money `json:"vatRate"`
	ReorderThreshold int64       `json:"reorderThreshold"`
	Unit             string      `json:"unit"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Name, r.PurchasePrice, r.SalePrice, r.Unit)
	p.VATRate = r.VATRate
	p.ReorderThreshold = types.Quantity(r.ReorderThreshold)
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Name             string      `json:"name" binding:"required"`
	PurchasePrice    types.Money `json:"purchasePrice"`
	SalePrice        types.Money `json:"salePrice"`
	VATRate          types.Money `json:"vatRate"`
	ReorderThreshold int64       `json:"reorderThreshold"`
	Unit             string      `json:"unit"`
	Version          int         `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	p.VATRate = r.VATRate
	p.ReorderThreshold = types.Quantity(r.ReorderThreshold)
	p.Unit = r.Unit
	p.Version = r.Version
}

// --- Regions ---

// CreateRegionRequest is the request body for creating a region.
type CreateRegionRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateRegionRequest) ToEntity() *region.Region {
	return region.New(r.Name)
}

// UpdateRegionRequest is the request body for updating a region.
type UpdateRegionRequest struct {
	Name    string `json:"name" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateRegionRequest) ApplyTo(reg *region.Region) {
	reg.Name = r.Name
	reg.Version = r.Version
}

// --- Points of Sale ---

// CreatePointOfSaleRequest is the request body for creating a point of sale.
type CreatePointOfSaleRequest struct {
	Name     string `json:"name" binding:"required"`
	RegionID string `json:"regionId" binding:"required"`
	Address  string `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePointOfSaleRequest) ToEntity() (*pointofsale.PointOfSale, error) {
	regionID, err := id.Parse(r.RegionID)
	if err != nil {
		return nil, apperror.NewValidation("invalid region id").
			WithDetail("regionId", r.RegionID)
	}
	pos := pointofsale.New(r.Name, regionID)
	pos.Address = r.Address
	return pos, nil
}

// UpdatePointOfSaleRequest is the request body for updating a point of sale.
type UpdatePointOfSaleRequest struct {
	Name     string `json:"name" binding:"required"`
	RegionID string `json:"regionId" binding:"required"`
	Address  string `json:"address"`
	Version  int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePointOfSaleRequest) ApplyTo(pos *pointofsale.PointOfSale) error {
	regionID, err := id.Parse(r.RegionID)
	if err != nil {
		return apperror.NewValidation("invalid region id").
			WithDetail("regionId", r.RegionID)
	}
	pos.Name = r.Name
	pos.RegionID = regionID
	pos.Address = r.Address
	pos.Version = r.Version
	return nil
}
