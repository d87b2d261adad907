package middleware

import (
	"fmt"
	"time"

	"eventops/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// NewKeyfunc selects token verification: a JWKS endpoint when configured,
// otherwise a shared HS256 secret.
func NewKeyfunc(jwksURL, secret string) (jwt.Keyfunc, error) {
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  time.Minute,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("load JWKS from %s: %w", jwksURL, err)
		}
		return jwks.Keyfunc, nil
	}

	if secret == "" {
		return nil, fmt.Errorf("either JWKS_URL or JWT_SECRET must be configured")
	}
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, nil
}

// AttachPostedBy copies the token subject into the request context so services
// can stamp ledger entries with the caller identity.
func AttachPostedBy(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return
	}
	ctx := common.WithPostedBy(c.Request().Context(), sub)
	c.SetRequest(c.Request().WithContext(ctx))
}
