package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleFranchiseAdmin = "franchise_admin"
	RoleBranchManager  = "branch_manager"
)

var JWTSecret = []byte("dev-secret-change-me")

// SetJWTSecret replaces the signing key; empty secrets are ignored.
func SetJWTSecret(secret string) {
	if secret == "" {
		return
	}
	JWTSecret = []byte(secret)
}

type CustomClaims struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	LocationID uint   `json:"location_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, role string, locationID uint) (string, error) {
	claims := &CustomClaims{
		UserID:     userID,
		Role:       role,
		LocationID: locationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "FranchiseMenuSync",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(JWTSecret)
	if err != nil {
		ErrorLogger.Printf("Error generating token: %v", err)
		return "", err
	}
	return tokenString, nil
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JWTSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
