package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs and verifies operator tokens. Set from configuration at
// startup via InitJWT.
var jwtSecretKey = []byte("weighbridge-dev-secret")

const (
	// OperatorTokenTTL bounds tokens minted for weighbridge operators.
	OperatorTokenTTL = 12 * time.Hour
)

// InitJWT installs the signing secret loaded from configuration.
func InitJWT(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// Claims carries the operator identity stamped onto weighings and voids.
type Claims struct {
	OperatorID string `json:"operator_id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateOperatorToken mints a token for a weighbridge operator. Token
// issuance normally lives with the identity provider; this is used by edge
// deployments that run disconnected.
func GenerateOperatorToken(operatorID, fullName, role string) (string, error) {
	expirationTime := time.Now().Add(OperatorTokenTTL)
	claims := &Claims{
		OperatorID: operatorID,
		FullName:   fullName,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "weighbridge-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign operator token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token string, returning the operator
// claims if valid.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
