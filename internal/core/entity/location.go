package entity

import (
	"context"
	"fmt"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	"github.com/shabani2/salemanagement-api/internal/core/id"
)

// LocationKind discriminates the three places stock can be attributed to.
type LocationKind string

const (
	LocationKindPointOfSale  LocationKind = "point_of_sale"
	LocationKindRegion       LocationKind = "region"
	LocationKindCentralDepot LocationKind = "central_depot"
)

// IsValid reports whether the kind is one of the known location kinds.
func (k LocationKind) IsValid() bool {
	switch k {
	case LocationKindPointOfSale, LocationKindRegion, LocationKindCentralDepot:
		return true
	}
	return false
}

// Location designates exactly one place a movement or stock row belongs to:
// a point of sale, a region, or the central depot (singleton, nil ID).
type Location struct {
	Kind LocationKind `db:"location_kind" json:"kind"`
	ID   id.ID        `db:"location_id" json:"id,omitempty"`
}

// PointOfSaleLocation builds a point-of-sale location.
func PointOfSaleLocation(posID id.ID) Location {
	return Location{Kind: LocationKindPointOfSale, ID: posID}
}

// RegionLocation builds a region location.
func RegionLocation(regionID id.ID) Location {
	return Location{Kind: LocationKindRegion, ID: regionID}
}

// CentralDepot returns the singleton central depot location.
func CentralDepot() Location {
	return Location{Kind: LocationKindCentralDepot, ID: id.Nil()}
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.Kind == ""
}

// IsCentralDepot reports whether the location is the central depot.
func (l Location) IsCentralDepot() bool {
	return l.Kind == LocationKindCentralDepot
}

// Equal compares two locations.
func (l Location) Equal(other Location) bool {
	return l.Kind == other.Kind && l.ID == other.ID
}

// String implements fmt.Stringer for logging.
func (l Location) String() string {
	if l.Kind == LocationKindCentralDepot {
		return string(l.Kind)
	}
	return fmt.Sprintf("%s:%s", l.Kind, l.ID)
}

// Validate implements Validatable.
func (l Location) Validate(ctx context.Context) error {
	if !l.Kind.IsValid() {
		return apperror.NewValidation("unknown location kind").
			WithDetail("kind", string(l.Kind))
	}
	if l.Kind == LocationKindCentralDepot {
		if !id.IsNil(l.ID) {
			return apperror.NewValidation("central depot does not carry an id")
		}
		return nil
	}
	if id.IsNil(l.ID) {
		return apperror.NewValidation("location id is required").
			WithDetail("kind", string(l.Kind))
	}
	return nil
}
