// Package auth validates and issues access tokens. User accounts and
// password verification live in the external identity service; this package
// only deals with the token the gateway forwards.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret, issuer string) JWTConfig {
	if issuer == "" {
		issuer = "salemanagement"
	}
	return JWTConfig{
		Secret:         secret,
		Issuer:         issuer,
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims represents JWT claims. The organizational binding (region or point
// of sale) travels in the token so scope resolution needs no user lookup.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	RegionID      string `json:"region_id,omitempty"`
	PointOfSaleID string `json:"pos_id,omitempty"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken generates a new access token for a user context.
// Used by the seed tool and tests; production tokens come from the identity
// service sharing the same secret.
func (s *JWTService) GenerateAccessToken(user *appctx.UserContext) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: user.UserID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
	}
	if !id.IsNil(user.RegionID) {
		claims.RegionID = user.RegionID.String()
	}
	if !id.IsNil(user.PointOfSaleID) {
		claims.PointOfSaleID = user.PointOfSaleID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns user context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := id.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid uid claim: %w", err)
	}

	user := &appctx.UserContext{
		UserID: userID,
		Email:  claims.Email,
		Role:   appctx.Role(claims.Role),
	}
	if claims.RegionID != "" {
		if user.RegionID, err = id.Parse(claims.RegionID); err != nil {
			return nil, fmt.Errorf("invalid region_id claim: %w", err)
		}
	}
	if claims.PointOfSaleID != "" {
		if user.PointOfSaleID, err = id.Parse(claims.PointOfSaleID); err != nil {
			return nil, fmt.Errorf("invalid pos_id claim: %w", err)
		}
	}
	return user, nil
}
