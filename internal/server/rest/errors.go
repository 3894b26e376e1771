package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/storage"
	"github.com/labstack/echo/v4"
)

// Client-facing messages.
const (
	msgInvalidCredentials   = "Invalid email or password."
	msgUserExists           = "User with this email already exists."
	msgUserNotFound         = "User not found."
	msgInvalidToken         = "Invalid token."
	msgTokenDetails         = "Token validation failed."
	msgUnauthorized         = "Unauthorized."
	msgForbidden            = "You can only access resources you own."
	msgEventNotFound        = "Event not found."
	msgRegistrationNotFound = "Registration not found."
	msgOwnEvent             = "You cannot register for your own event."
	msgAlreadyRegistered    = "You are already registered for this event."
	msgOnlyImages           = "Only image files are allowed (.jpg, .jpeg, .png, .gif)."
	msgTooManyAttempts      = "Too many failed login attempts. Try again later."
	msgTooManyRequests      = "Too many requests."
	msgStorageDisabled      = "Image storage is not available."
	msgBadRequest           = "Invalid request body."
	msgInternal             = "Internal server error."
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{Error: msg})
}

// errorResponse maps a service error onto a status code and a fixed message.
// Unknown errors are logged and reported as 500 without details.
func (s *HTTPServer) errorResponse(c echo.Context, err error) error {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"path", c.Request().URL.Path, "error", err)
	}
	return writeError(c, status, msg)
}

func classify(err error) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, msgUserExists
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, common.ErrTooManyAttempts):
		return http.StatusTooManyRequests, msgTooManyAttempts
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusUnauthorized, msgUserNotFound
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, common.ErrEventNotFound):
		return http.StatusNotFound, msgEventNotFound
	case errors.Is(err, common.ErrRegistrationNotFound):
		return http.StatusNotFound, msgRegistrationNotFound
	case errors.Is(err, common.ErrCannotRegisterForOwnEvent):
		return http.StatusBadRequest, msgOwnEvent
	case errors.Is(err, common.ErrAlreadyRegistered):
		return http.StatusBadRequest, msgAlreadyRegistered
	case errors.Is(err, common.ErrInvalidImage):
		return http.StatusBadRequest, msgOnlyImages
	case errors.Is(err, storage.ErrDisabled):
		return http.StatusServiceUnavailable, msgStorageDisabled
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// handleHTTPError renders echo's own errors (unknown route, bad method,
// oversized body) in the API's error shape.
func (s *HTTPServer) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := http.StatusInternalServerError, msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	} else {
		s.logger.Error(c.Request().Context(), "unhandled error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = writeError(c, status, msg)
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "writing error response", "error", err)
	}
}
