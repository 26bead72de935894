package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/api/middleware"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// ctxToken returns the bearer token stored by middleware.Auth.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.ContextToken).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, domain.UserMessage(domain.ErrNoSession))
	}
	return token, nil
}

// ctxProfile returns the acting admin's profile stored by
// middleware.RequireAdmin. Its presence proves the gate let the request in.
func ctxProfile(c echo.Context) (*domain.Profile, error) {
	profile, _ := c.Get(middleware.ContextProfile).(*domain.Profile)
	if profile == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, domain.UserMessage(domain.ErrNoSession))
	}
	return profile, nil
}
