package arrsync

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/profilarr/profilarr/internal/arrconfig"
)

// Handlers handles sync HTTP endpoints.
type Handlers struct {
	service *Service
	configs *arrconfig.Service
}

// NewHandlers creates a new sync handlers instance.
func NewHandlers(service *Service, configs *arrconfig.Service) *Handlers {
	return &Handlers{service: service, configs: configs}
}

// RegisterRoutes registers sync routes on the given group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Import)
}

// Import runs one sync strategy against a configured server. The response
// status reflects the batch outcome: 200 for full success or a dry run,
// 207 when some items failed, 500 when nothing landed.
func (h *Handlers) Import(c echo.Context) error {
	ctx := c.Request().Context()

	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Strategy == "" {
		req.Strategy = StrategyFormat
	}
	if !req.Strategy.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "strategy must be \"format\" or \"profile\""})
	}
	if len(req.Filenames) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "filenames must not be empty"})
	}
	if req.ArrID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "arrID is required"})
	}

	cfg, err := h.configs.GetByID(ctx, req.ArrID)
	if err != nil {
		if errors.Is(err, arrconfig.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "arr config not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	result := h.service.Run(ctx, cfg, req)

	status := http.StatusOK
	switch result.Status {
	case StatusPartial:
		status = http.StatusMultiStatus
	case StatusFailed:
		status = http.StatusInternalServerError
	}
	if result.DryRun {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}
