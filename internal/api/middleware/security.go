// Package middleware holds the hand-rolled echo middleware the standard
// middleware package does not cover.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// browserHeaders are attached to every response. The app serves its own UI,
// so framing is restricted to the app itself.
var browserHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "SAMEORIGIN",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "frame-ancestors 'self'",
}

// SecurityHeaders sets the baseline browser security headers and disables
// caching of API responses.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for name, value := range browserHeaders {
				h.Set(name, value)
			}
			if strings.HasPrefix(c.Request().URL.Path, "/api") {
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
				h.Set("Pragma", "no-cache")
			}
			return next(c)
		}
	}
}
