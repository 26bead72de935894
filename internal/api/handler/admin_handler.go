package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// AdminHandler manages admin accounts.
type AdminHandler struct {
	elevation ports.ElevationService
}

func NewAdminHandler(elevation ports.ElevationService) *AdminHandler {
	return &AdminHandler{elevation: elevation}
}

// Grant gives admin status to an email address, creating the account when
// none exists.
//
// @Summary      Grant admin status
// @Tags         admins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      grantAdminRequest  true  "Account to elevate"
// @Success      200   {object}  grantAdminResponse  "existing profile promoted"
// @Success      201   {object}  grantAdminResponse  "new admin account created"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/admins [post]
func (h *AdminHandler) Grant(c echo.Context) error {
	var req grantAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.elevation.RequestElevation(c.Request().Context(), ports.AdminGrantRequest{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if res.Outcome == ports.ElevationCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, toGrantAdminResponse(res))
}

// Confirm marks an admin's email as confirmed without the mailed link.
//
// @Summary      Confirm an admin's email
// @Tags         admins
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Profile id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /admin/admins/{id}/confirm [post]
func (h *AdminHandler) Confirm(c echo.Context) error {
	if err := h.elevation.ConfirmAdmin(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Email confirmed. The admin can sign in now."})
}
