package pointofsale

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/pkg/logger"
)

// Service provides business operations for the point-of-sale catalog.
// It also implements security.Topology for role-scope expansion.
type Service struct {
	repo Repository
}

// NewService creates a new point-of-sale service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new point of sale.
func (s *Service) Create(ctx context.Context, p *PointOfSale) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "point of sale created", "id", p.ID, "name", p.Name, "region_id", p.RegionID)
	return nil
}

// GetByID retrieves a point of sale.
func (s *Service) GetByID(ctx context.Context, posID id.ID) (*PointOfSale, error) {
	return s.repo.GetByID(ctx, posID)
}

// Update modifies an existing point of sale.
func (s *Service) Update(ctx context.Context, p *PointOfSale) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// SetDeletionMark soft-deletes or restores a point of sale.
func (s *Service) SetDeletionMark(ctx context.Context, posID id.ID, marked bool) error {
	return s.repo.SetDeletionMark(ctx, posID, marked)
}

// List retrieves points of sale with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PointOfSale], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// PointOfSaleIDs implements security.Topology.
func (s *Service) PointOfSaleIDs(ctx context.Context, regionID id.ID) ([]id.ID, error) {
	return s.repo.ListIDsByRegion(ctx, regionID)
}

// RegionMap returns point-of-sale id to region id for all points of sale.
// Region-level report rollups use it to fold point-of-sale movements into
// their region.
func (s *Service) RegionMap(ctx context.Context) (map[id.ID]id.ID, error) {
	return s.repo.RegionMap(ctx)
}
