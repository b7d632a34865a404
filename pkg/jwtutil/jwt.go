package jwtutil

import (
	"time"

	"circuit-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	signingKey      = []byte("defaultsecretkey")
	expirationHours = 24
)

// Initialize configures the signing key and token lifetime from configuration
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expirationHours = cfg.ExpirationHours
}

// UserClaims represents the JWT claims for an authenticated user.
// MemberID is the tenant the user belongs to and AddressID is the
// location the user acts from within that tenant.
type UserClaims struct {
	Email        string `json:"email"`
	UserID       uint   `json:"user_id"`
	MemberID     uint   `json:"member_id"`
	AddressID    uint   `json:"address_id"`
	SelfManaged  bool   `json:"self_managed"`
	IsGlobal     bool   `json:"is_global,omitempty"`
	GlobalActive bool   `json:"global_active,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed token for the given claims
func GenerateToken(claims *UserClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationHours) * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
