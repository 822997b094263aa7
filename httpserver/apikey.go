package httpserver

import (
	"github.com/labstack/echo/v4"

	"moviecatalog/apikey"
	"moviecatalog/errs"
)

// Identify attaches the caller identity to the request context. It never
// rejects a request.
func (s *Server) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := s.Gate.Identify(req.Header.Get(apikey.HeaderName))
		c.SetRequest(req.WithContext(apikey.WithIdentity(req.Context(), id)))
		return next(c)
	}
}

// RequireRole rejects requests whose identity lacks role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !apikey.FromContext(c.Request().Context()).HasRole(role) {
				return errs.Errorf(errs.EUNAUTHORIZED, "Unauthorized")
			}
			return next(c)
		}
	}
}
