package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

const genericStoreMessage = "Something went wrong. Please try again."

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and user-facing text.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	msg := domain.UserMessage(err)

	switch {
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, domain.ErrAlreadyAdmin),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrEmailInUse):
		return http.StatusConflict, msg
	case errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrEmailNotConfirmed):
		return http.StatusForbidden, msg
	case errors.Is(err, domain.ErrInvalidCredentials), domain.IsAuth(err):
		return http.StatusUnauthorized, msg
	case errors.Is(err, domain.ErrSamePassword):
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, domain.ErrConfirmationInvalid):
		return http.StatusBadRequest, msg
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, domain.ErrContentNotFound):
		return http.StatusNotFound, "content not found"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	var se *domain.StoreError
	if errors.As(err, &se) {
		return http.StatusInternalServerError, genericStoreMessage
	}
	return http.StatusInternalServerError, "internal server error"
}
