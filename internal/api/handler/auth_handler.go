package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

type AuthHandler struct {
	access ports.AccessService
}

func NewAuthHandler(access ports.AccessService) *AuthHandler {
	return &AuthHandler{access: access}
}

// Login signs an admin in. Non-admin accounts are signed straight back out.
//
// @Summary      Admin sign-in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.access.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Session: toSessionResponse(res.Session),
		Profile: toProfileResponse(res.Profile),
	})
}

// Logout revokes the caller's session.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}
	if err := h.access.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh swaps the caller's token for a fresh one.
//
// @Summary      Refresh the session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}
	session, err := h.access.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// ConfirmEmail redeems the token from a confirmation mail.
//
// @Summary      Confirm an email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      confirmEmailRequest  true  "Token from the confirmation link"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/confirm [post]
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req confirmEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.access.ConfirmEmail(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Your email is confirmed. You can sign in now."})
}

// ResendConfirmation mails a new confirmation link. The answer is the same
// whether or not the address is registered.
//
// @Summary      Resend the confirmation mail
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendConfirmationRequest  true  "Address to confirm"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/confirm/resend [post]
func (h *AuthHandler) ResendConfirmation(c echo.Context) error {
	var req resendConfirmationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.access.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "If that address is waiting for confirmation, a new link is on its way.",
	})
}
