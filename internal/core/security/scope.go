// Package security provides authorization and access control.
package security

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/apperror"
	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
)

// Topology answers organizational-structure questions needed to expand a
// region binding into the set of points of sale beneath it.
type Topology interface {
	// PointOfSaleIDs returns the ids of all points of sale in a region.
	PointOfSaleIDs(ctx context.Context, regionID id.ID) ([]id.ID, error)
}

// AccessScope defines the boundaries of data visibility for the current
// request. It is resolved once per request from the caller's claims and
// conjoined server-side with every ledger and order query.
type AccessScope struct {
	// Role is the caller's role.
	Role appctx.Role

	// UserID is the authenticated caller.
	UserID id.ID

	// All bypasses location filtering (SuperAdmin only). Only an
	// unrestricted scope sees central depot movements.
	All bool

	// RegionID limits access to one region (RegionAdmin).
	RegionID id.ID

	// PointOfSaleIDs limits access to specific points of sale: the region's
	// points of sale for a RegionAdmin, a single entry for POS-bound roles.
	PointOfSaleIDs []id.ID

	// OwnRecordsOnly additionally filters listings by requester = caller
	// (Salesperson "own sales" views).
	OwnRecordsOnly bool
}

// Resolve computes the AccessScope for the caller's role and organizational
// binding. RegionAdmin scopes are expanded to the region's points of sale via
// the topology so the predicate can be evaluated without joins.
func Resolve(ctx context.Context, user *appctx.UserContext, topo Topology) (*AccessScope, error) {
	if user == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	if !user.Role.IsValid() {
		return nil, apperror.NewForbidden("unknown role").WithDetail("role", string(user.Role))
	}

	scope := &AccessScope{
		Role:   user.Role,
		UserID: user.UserID,
	}

	switch user.Role {
	case appctx.RoleSuperAdmin:
		scope.All = true

	case appctx.RoleRegionAdmin:
		if id.IsNil(user.RegionID) {
			return nil, apperror.NewForbidden("region binding is required for this role")
		}
		scope.RegionID = user.RegionID
		posIDs, err := topo.PointOfSaleIDs(ctx, user.RegionID)
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("op", "expand region scope")
		}
		scope.PointOfSaleIDs = posIDs

	default: // POS-bound roles
		if id.IsNil(user.PointOfSaleID) {
			return nil, apperror.NewForbidden("point-of-sale binding is required for this role")
		}
		scope.PointOfSaleIDs = []id.ID{user.PointOfSaleID}
		scope.OwnRecordsOnly = user.Role == appctx.RoleSalesperson
	}

	return scope, nil
}

// AllowsLocation reports whether the scope may see the given location.
// Central depot is visible only to an unrestricted scope.
func (s *AccessScope) AllowsLocation(loc entity.Location) bool {
	if s.All {
		return true
	}

	switch loc.Kind {
	case entity.LocationKindCentralDepot:
		return false
	case entity.LocationKindRegion:
		return !id.IsNil(s.RegionID) && loc.ID == s.RegionID
	case entity.LocationKindPointOfSale:
		for _, posID := range s.PointOfSaleIDs {
			if posID == loc.ID {
				return true
			}
		}
		return false
	}
	return false
}

// RequireLocation returns a ScopeViolation error if the location is outside
// the caller's scope. Used on write paths (order destinations, movements).
func (s *AccessScope) RequireLocation(loc entity.Location) error {
	if s.AllowsLocation(loc) {
		return nil
	}
	return apperror.NewScopeViolation("location is outside your scope").
		WithDetail("location", loc.String())
}

// RequesterFilter returns the requester id listings must be narrowed to,
// or nil when the scope does not restrict by requester.
func (s *AccessScope) RequesterFilter() *id.ID {
	if s.OwnRecordsOnly && !id.IsNil(s.UserID) {
		uid := s.UserID
		return &uid
	}
	return nil
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context, or nil if middleware did not
// resolve one.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return nil
}

// MustScope returns AccessScope from context or an error suitable for the
// operation boundary.
func MustScope(ctx context.Context) (*AccessScope, error) {
	if s := GetScope(ctx); s != nil {
		return s, nil
	}
	return nil, apperror.NewUnauthorized("access scope not resolved")
}
