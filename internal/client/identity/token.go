package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/icymath/guestbook/internal/common"
)

// Claims carries the registered claims plus the anonymous visitor ID.
type Claims struct {
	jwt.RegisteredClaims
	VisitorID string
}

// GenerateToken signs a token holding visitorID, valid for validityDuration.
func GenerateToken(visitorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		VisitorID: visitorID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VisitorIDFromToken validates tokenString and extracts the visitor ID.
func VisitorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.VisitorID, nil
}
