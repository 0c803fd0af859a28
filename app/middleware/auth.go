package middleware

import (
	"net/http"
	"strings"

	"github.com/crumble-bakery/signup-service/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type adminTokenValidator interface {
	ValidateToken(tokenString string) (*service.AdminClaims, error)
}

type AuthMiddleware struct {
	tokens adminTokenValidator
}

func NewAuthMiddleware(tokens adminTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "missing authorization header",
			})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logrus.Debug("Invalid authorization header format")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid authorization header format",
			})
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			logrus.Debug("Invalid or expired admin token")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid or expired token",
			})
		}

		c.Set("token_id", claims.TokenID)

		return next(c)
	}
}
