package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// bearerAuth validates the access token from the Authorization header and
// stores the caller's identity in the request context.
func (s *HTTPServer) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(common.AuthorizationHeaderName))
		if !ok {
			return writeError(c, http.StatusUnauthorized, msgUnauthorized)
		}

		claims, err := s.tokens.ValidateAccessToken(token, false)
		if err != nil {
			s.logger.Debug(c.Request().Context(), "bearer token rejected", "error", err)
			return writeError(c, http.StatusUnauthorized, msgInvalidToken)
		}

		req := c.Request()
		c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), auth.IdentityFromClaims(claims))))
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (s *HTTPServer) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		s.logger.Info(req.Context(), "http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", res.Status,
			"latency", time.Since(start).String(),
			"request_id", res.Header().Get(echo.HeaderXRequestID),
		)
		return nil
	}
}

func rateLimiter(rl RateLimit) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rl.RPS),
		Burst:     rl.Burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return writeError(c, http.StatusForbidden, "Forbidden.")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return writeError(c, http.StatusTooManyRequests, msgTooManyRequests)
		},
	})
}
