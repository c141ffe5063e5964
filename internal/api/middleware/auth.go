package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/order-tracking/internal/core/auth"
	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/policy"
)

// Context keys set by Auth.
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, bool)
}

// Auth validates the bearer token and injects the caller's identity into
// the context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, ok := verifier.Verify(parts[1])
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyRole, string(claims.Role))

			return next(c)
		}
	}
}

// ActorFrom returns the identity injected by Auth. The actor is anonymous
// when Auth did not run.
func ActorFrom(c echo.Context) policy.Actor {
	id, _ := c.Get(ContextKeyUserID).(string)
	role, _ := c.Get(ContextKeyRole).(string)
	return policy.Actor{ID: id, Role: domain.Role(role)}
}
