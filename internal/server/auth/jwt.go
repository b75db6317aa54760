// Package auth holds the credential primitives of the session gate: signed
// session tokens for the cookie and bcrypt hashing of PINs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carry a reference to a server-side session and the account it was
// opened for.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	AccountID string `json:"aid"`
}

// GenerateToken signs a session reference valid until expiresAt.
func GenerateToken(sessionID, accountID string, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionID: sessionID,
		AccountID: accountID,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString. Expired
// tokens yield common.ErrSessionExpired, anything else common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrSessionExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.SessionID == "" || claims.AccountID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
