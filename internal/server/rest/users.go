package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/labstack/echo/v4"
)

func (s *HTTPServer) registerUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, msgBadRequest)
	}

	user, err := s.users.Register(c.Request().Context(), req.Email, req.Password, req.UserName)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, msgBadRequest)
	}

	pair, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// refresh answers every token failure with the same body, whatever the
// reason was.
func (s *HTTPServer) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, msgBadRequest)
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		return invalidTokenResponse(c)
	}

	pair, err := s.users.Refresh(c.Request().Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return invalidTokenResponse(c)
		}
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func invalidTokenResponse(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Error: msgInvalidToken, Details: msgTokenDetails})
}

func (s *HTTPServer) profile(c echo.Context) error {
	user, err := s.users.Profile(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
