// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
)

// --- Location ---

// LocationDTO is the wire shape of a stock location. Kind discriminates;
// the id is required for regions and points of sale, forbidden for the
// central depot.
type LocationDTO struct {
	Kind string `json:"kind" form:"locationKind" binding:"required"`
	ID   string `json:"id,omitempty" form:"locationId"`
}

// ToLocation converts the DTO to a domain location.
func (d LocationDTO) ToLocation() (entity.Location, error) {
	loc := entity.Location{Kind: entity.LocationKind(d.Kind)}
	if d.ID != "" {
		parsed, err := id.Parse(d.ID)
		if err != nil {
			return entity.Location{}, apperror.NewValidation("invalid location id").
				WithDetail("id", d.ID)
		}
		loc.ID = parsed
	}
	return loc, nil
}

// FromLocation converts a domain location to its wire shape.
func FromLocation(loc entity.Location) LocationDTO {
	d := LocationDTO{Kind: string(loc.Kind)}
	if !id.IsNil(loc.ID) {
		d.ID = loc.ID.String()
	}
	return d
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Deletion ---

type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}
