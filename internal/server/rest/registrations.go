package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *HTTPServer) registerForEvent(c echo.Context) error {
	reg, err := s.registrations.Register(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, toRegistrationResponse(reg))
}

func (s *HTTPServer) unregisterFromEvent(c echo.Context) error {
	if err := s.registrations.Unregister(c.Request().Context(), c.Param("id")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) listRegistrations(c echo.Context) error {
	regs, err := s.registrations.ListForOwnedEvents(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}

	out := make([]registrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, toRegistrationResponse(&regs[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) getRegistration(c echo.Context) error {
	reg, err := s.registrations.GetForOwner(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg))
}
