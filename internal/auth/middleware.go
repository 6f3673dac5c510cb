package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// BearerToken extracts the token from an "Authorization: Bearer ..." header
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// Middleware rejects requests without a valid bearer token and stores the claims on the context
func Middleware(tokens *TokenService, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				logger.Warn("Request rejected: missing token", zap.String("path", c.Path()))
				return echo.NewHTTPError(http.StatusUnauthorized, "JWT token is required in Authorization header")
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.String("path", c.Path()), zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired JWT token")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Middleware
func ClaimsFrom(c echo.Context) (*JWTClaims, bool) {
	claims, ok := c.Get(claimsKey).(*JWTClaims)
	return claims, ok
}
