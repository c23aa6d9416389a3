// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"github.com/shabani2/salemanagement-api/internal/core/id"
)

// Role identifies the caller's breadth of visibility.
type Role string

const (
	// RoleSuperAdmin sees everything, central depot included.
	RoleSuperAdmin Role = "super_admin"
	// RoleRegionAdmin is bound to one region and its points of sale.
	RoleRegionAdmin Role = "region_admin"
	// RolePointOfSaleAdmin is bound to one point of sale.
	RolePointOfSaleAdmin Role = "pos_admin"
	// RoleSalesperson is bound to one point of sale; own-sales views are
	// additionally filtered to the caller's own records.
	RoleSalesperson Role = "salesperson"
	// RoleLogistician is bound to one point of sale.
	RoleLogistician Role = "logistician"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleRegionAdmin, RolePointOfSaleAdmin, RoleSalesperson, RoleLogistician:
		return true
	}
	return false
}

// BoundToPointOfSale reports whether the role carries a point-of-sale binding.
func (r Role) BoundToPointOfSale() bool {
	switch r {
	case RolePointOfSaleAdmin, RoleSalesperson, RoleLogistician:
		return true
	}
	return false
}

// UserContext contains the authenticated caller's identity and organizational
// binding. It is populated from JWT claims by middleware and passed explicitly
// through context — there is no ambient session state.
type UserContext struct {
	UserID        id.ID
	Email         string
	Role          Role
	RegionID      id.ID // set iff Role == RoleRegionAdmin
	PointOfSaleID id.ID // set iff Role is bound to a point of sale
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or the nil ID.
func GetUserID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.Nil()
}
