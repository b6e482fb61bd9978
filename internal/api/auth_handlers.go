package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/profilarr/profilarr/internal/auth"
)

const sessionCookie = "profilarr_session"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login validates credentials and issues a session token.
func (s *Server) login(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if s.authLimiter.IsAccountLocked(req.Username) {
		retry := s.authLimiter.GetLockoutRemaining(req.Username)
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error":      "account temporarily locked",
			"retryAfter": retry.Round(time.Second).String(),
		})
	}

	if err := s.authService.ValidateCredentials(ctx, req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrNoPasswordSet) {
			s.authLimiter.RecordFailedAttempt(req.Username)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	s.authLimiter.RecordSuccessfulLogin(req.Username)

	token, err := s.authService.GenerateToken(req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// logout clears the session cookie.
func (s *Server) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// authStatus reports whether auth is configured and whether this request
// carries a valid session.
func (s *Server) authStatus(c echo.Context) error {
	configured := s.authService.IsConfigured(c.Request().Context())
	_, authenticated := s.sessionUser(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"configured":    configured,
		"authenticated": authenticated,
	})
}

// setupCredentials sets the initial username and password. Once configured,
// it requires an authenticated session.
func (s *Server) setupCredentials(c echo.Context) error {
	ctx := c.Request().Context()

	if s.authService.IsConfigured(ctx) {
		if _, ok := s.sessionUser(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		}
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := s.authService.SetCredentials(ctx, req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordRequired) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "password is required"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "credentials updated"})
}

// rotateAPIKey replaces the automation API key.
func (s *Server) rotateAPIKey(c echo.Context) error {
	key, err := s.authService.RotateAPIKey(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"apiKey": key})
}

// requireAuth guards the API. Requests authenticate with a session token
// (cookie or bearer) or an API key header. Until credentials are set up,
// everything is open so the first run can be configured.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		if strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/status") {
			return next(c)
		}
		if !s.authService.IsConfigured(c.Request().Context()) {
			return next(c)
		}

		if _, ok := s.sessionUser(c); ok {
			return next(c)
		}
		if key := c.Request().Header.Get("X-Api-Key"); key != "" {
			if err := s.authService.ValidateAPIKey(c.Request().Context(), key); err == nil {
				return next(c)
			}
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
}

// sessionUser extracts and validates the session token from the request.
func (s *Server) sessionUser(c echo.Context) (string, bool) {
	token := ""
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" {
		return "", false
	}

	claims, err := s.authService.ValidateToken(token)
	if err != nil {
		return "", false
	}
	return claims.Username, true
}
