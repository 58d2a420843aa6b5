package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims defines the custom claims carried by our JWTs. We embed
// jwt.RegisteredClaims for the standard fields like 'ExpiresAt'. UserID
// identifies the authenticated user; IsAdmin gates the back-office routes so
// the admin middleware never needs a database lookup.
type SessionClaims struct {
	UserID  string `json:"userID"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// sessionTTL is how long an issued session token stays valid.
const sessionTTL = 24 * time.Hour

// GenerateJWT creates a new signed JWT string for a given user.
func GenerateJWT(userID string, isAdmin bool, secret string) (string, error) {
	claims := &SessionClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	// HS256 (HMAC using SHA-256) signing; the signature ensures the token
	// cannot be tampered with by the client.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT parses and validates a JWT string, checking the signature and
// the standard claims (expiry). If valid, it returns the session claims.
func ValidateJWT(tokenString string, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Security check: ensure the token's signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		// Covers malformed tokens, bad signatures, and jwt.ErrTokenExpired.
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
