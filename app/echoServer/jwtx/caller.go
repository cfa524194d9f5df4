// util/jwtx.go
package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"librental/service/policy"
)

// Caller builds the policy caller from the verified token echo-jwt stored in
// the context. The zero (anonymous) caller is returned when there is none.
func Caller(c echo.Context) policy.Caller {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return policy.Caller{}
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return policy.Caller{}
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return policy.Caller{}
	}
	isStaff, _ := claims["is_staff"].(bool)

	return policy.Caller{
		ID:            int64(sub),
		IsStaff:       isStaff,
		Authenticated: true,
	}
}
