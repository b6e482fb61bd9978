package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers handles settings HTTP endpoints.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new settings handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers settings routes on the given group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/sync", h.GetSync)
	g.PUT("/sync", h.PutSync)
	g.GET("/renames", h.GetRenames)
	g.PUT("/renames", h.PutRenames)
}

// GetSync returns the sync tuning settings.
func (h *Handlers) GetSync(c echo.Context) error {
	s, err := h.service.GetSyncSettings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// PutSync replaces the sync tuning settings.
func (h *Handlers) PutSync(c echo.Context) error {
	var s SyncSettings
	if err := c.Bind(&s); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.service.SaveSyncSettings(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// GetRenames returns the set of formats included in renaming.
func (h *Handlers) GetRenames(c echo.Context) error {
	s, err := h.service.GetRenameSettings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// PutRenames replaces the set of formats included in renaming.
func (h *Handlers) PutRenames(c echo.Context) error {
	var s RenameSettings
	if err := c.Bind(&s); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.service.SaveRenameSettings(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}
