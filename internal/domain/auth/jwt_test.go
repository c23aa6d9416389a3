package auth

import (
	"testing"

	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/id"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret", "salemanagement-test"))

	regionID := id.New()
	user := &appctx.UserContext{
		UserID:   id.New(),
		Email:    "manager@example.com",
		Role:     appctx.RoleRegionAdmin,
		RegionID: regionID,
	}

	token, expiresAt, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expiry not set")
	}

	got, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if got.UserID != user.UserID {
		t.Errorf("user id = %v, want %v", got.UserID, user.UserID)
	}
	if got.Role != appctx.RoleRegionAdmin {
		t.Errorf("role = %v, want region_admin", got.Role)
	}
	if got.RegionID != regionID {
		t.Errorf("region id = %v, want %v", got.RegionID, regionID)
	}
	if !id.IsNil(got.PointOfSaleID) {
		t.Errorf("pos id = %v, want nil", got.PointOfSaleID)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuing := NewJWTService(DefaultJWTConfig("secret-a", ""))
	validating := NewJWTService(DefaultJWTConfig("secret-b", ""))

	token, _, err := issuing.GenerateAccessToken(&appctx.UserContext{
		UserID: id.New(),
		Role:   appctx.RoleSalesperson,
	})
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	if _, err := validating.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret", ""))
	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token must not validate")
	}
}
