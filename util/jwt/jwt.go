package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issue signs a short-lived HS256 access token carrying the caller identity
// and staff role.
func Issue(secret string, userID int64, email string, isStaff bool, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"email":    email,
		"is_staff": isStaff,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse verifies an HS256 access token and returns it with its claims.
// Anything other than a valid, unexpired HS256 token is an error.
func Parse(tokenStr string, secret string) (*jwt.Token, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return tok, nil
}
