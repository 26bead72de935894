package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// SettingsHandler lets the acting admin manage their own profile.
type SettingsHandler struct {
	service ports.SettingsService
}

func NewSettingsHandler(service ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get handles GET /admin/settings.
//
// @Summary      Get own settings
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	actor, err := ctxProfile(c)
	if err != nil {
		return err
	}
	profile, err := h.service.GetSettings(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile handles PUT /admin/settings.
//
// @Summary      Update own profile and notification preferences
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSettingsRequest  true  "Profile fields"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/settings [put]
func (h *SettingsHandler) UpdateProfile(c echo.Context) error {
	actor, err := ctxProfile(c)
	if err != nil {
		return err
	}
	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.UpdateProfile(c.Request().Context(), actor.ID, ports.ProfileSettings{
		FullName:              req.FullName,
		Email:                 req.Email,
		EmailNotifications:    req.EmailNotifications,
		ContactNotifications:  req.ContactNotifications,
		WorkshopNotifications: req.WorkshopNotifications,
		CourseNotifications:   req.CourseNotifications,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// ChangePassword handles PUT /admin/settings/password.
//
// @Summary      Change own password
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "New password and confirmation"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/settings/password [put]
func (h *SettingsHandler) ChangePassword(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ChangePassword(c.Request().Context(), token, ports.PasswordChange{
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
