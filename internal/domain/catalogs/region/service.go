package region

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/pkg/logger"
)

// Service provides business operations for the region catalog.
type Service struct {
	repo Repository
}

// NewService creates a new region service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new region.
func (s *Service) Create(ctx context.Context, r *Region) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return err
	}
	logger.Info(ctx, "region created", "id", r.ID, "name", r.Name)
	return nil
}

// GetByID retrieves a region.
func (s *Service) GetByID(ctx context.Context, regionID id.ID) (*Region, error) {
	return s.repo.GetByID(ctx, regionID)
}

// Update modifies an existing region.
func (s *Service) Update(ctx context.Context, r *Region) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, r)
}

// SetDeletionMark soft-deletes or restores a region.
func (s *Service) SetDeletionMark(ctx context.Context, regionID id.ID, marked bool) error {
	return s.repo.SetDeletionMark(ctx, regionID, marked)
}

// List retrieves regions with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Region], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
