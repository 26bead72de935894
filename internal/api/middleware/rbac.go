package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// RequireAdmin runs the full authorization check on every request. Only an
// AUTHORIZED decision reaches next, with the identity and profile stored in
// the context. Must run after Auth.
func RequireAdmin(access ports.AccessService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := c.Get(ContextToken).(string)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.UserMessage(domain.ErrNoSession))
			}

			d := access.Evaluate(c.Request().Context(), token)
			switch d.State {
			case domain.GateAuthorized:
				c.Set(ContextIdentity, d.Identity)
				c.Set(ContextProfile, d.Profile)
				return next(c)
			case domain.GateAuthenticatedNonAdmin:
				return echo.NewHTTPError(http.StatusForbidden, domain.UserMessage(domain.ErrAccessDenied))
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, domain.UserMessage(domain.ErrSessionInvalid))
			}
		}
	}
}
