// Package rest exposes the eventhub services over a JSON HTTP API built on
// echo.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// RateLimit configures the per-client request limiter. Zero RPS disables it.
type RateLimit struct {
	RPS   float64
	Burst int
}

type HTTPServer struct {
	address       string
	users         *services.UserService
	events        *services.EventService
	registrations *services.RegistrationService
	tokens        *auth.TokenService
	logger        logging.Logger
	echo          *echo.Echo
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, es *services.EventService,
	rs *services.RegistrationService, tokens *auth.TokenService, rl RateLimit) *HTTPServer {
	s := &HTTPServer{
		address:       a,
		users:         us,
		events:        es,
		registrations: rs,
		tokens:        tokens,
		logger:        l.With("module", "http_server"),
	}
	s.echo = s.newEcho(rl)
	return s
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

func (s *HTTPServer) newEcho(rl RateLimit) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.accessLog)
	if rl.RPS > 0 {
		e.Use(rateLimiter(rl))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	bearer := s.bearerAuth

	users := api.Group("/users")
	users.POST("/register", s.registerUser)
	users.POST("/login", s.login)
	users.POST("/refresh", s.refresh)
	users.GET("/me", s.profile, bearer)

	events := api.Group("/events")
	events.GET("", s.listEvents)
	events.GET("/:id", s.getEvent)
	events.POST("", s.createEvent, bearer)
	events.PUT("/:id", s.updateEvent, bearer)
	events.DELETE("/:id", s.deleteEvent, bearer)
	events.POST("/:id/image", s.presignImage, bearer)
	events.POST("/:id/register", s.registerForEvent, bearer)
	events.DELETE("/:id/register", s.unregisterFromEvent, bearer)

	admin := api.Group("/events-registration")
	admin.GET("", s.listRegistrations, bearer)
	admin.GET("/:id", s.getRegistration, bearer)

	return e
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
