package rest

import (
	"net/http"

	"github.com/dmitrijs2005/eventhub/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (s *HTTPServer) listEvents(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := s.events.List(ctx)
	if err != nil {
		return s.errorResponse(c, err)
	}

	out := make([]eventResponse, 0, len(events))
	for i := range events {
		out = append(out, s.toEventResponse(ctx, &events[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) getEvent(c echo.Context) error {
	ctx := c.Request().Context()
	event, err := s.events.Get(ctx, c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, s.toEventResponse(ctx, event))
}

func (s *HTTPServer) createEvent(c echo.Context) error {
	in, err := bindEvent(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, msgBadRequest)
	}

	ctx := c.Request().Context()
	event, err := s.events.Create(ctx, in)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, s.toEventResponse(ctx, event))
}

func (s *HTTPServer) updateEvent(c echo.Context) error {
	in, err := bindEvent(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, msgBadRequest)
	}

	ctx := c.Request().Context()
	event, err := s.events.Update(ctx, c.Param("id"), in)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, s.toEventResponse(ctx, event))
}

func (s *HTTPServer) deleteEvent(c echo.Context) error {
	if err := s.events.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) presignImage(c echo.Context) error {
	var req imageRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, msgBadRequest)
	}

	up, err := s.events.PresignImageUpload(c.Request().Context(), c.Param("id"), req.FileName)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, imageResponse{UploadURL: up.UploadURL, ImageURL: up.ImageURL})
}

func bindEvent(c echo.Context) (services.EventInput, error) {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return services.EventInput{}, err
	}
	return services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	}, nil
}
