package arrconfig

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ConnectionTester checks that a configuration's server is reachable and
// the API key is accepted.
type ConnectionTester func(ctx context.Context, cfg *Config) error

// Handlers handles arr configuration HTTP endpoints.
type Handlers struct {
	service  *Service
	testConn ConnectionTester

	// onChange runs after any mutation so schedules can be reconciled.
	onChange func(ctx context.Context)
}

// NewHandlers creates a new arr config handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// SetConnectionTester wires the connectivity check used by the test endpoint.
func (h *Handlers) SetConnectionTester(tester ConnectionTester) {
	h.testConn = tester
}

// SetOnChange registers a hook invoked after create, update or delete.
func (h *Handlers) SetOnChange(fn func(ctx context.Context)) {
	h.onChange = fn
}

// RegisterRoutes registers arr config routes on the given group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/test", h.Test)
}

// List returns all configurations.
func (h *Handlers) List(c echo.Context) error {
	configs, err := h.service.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, configs)
}

// Create adds a new configuration.
func (h *Handlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	cfg, err := h.service.Create(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	h.changed(ctx)
	return c.JSON(http.StatusCreated, cfg)
}

// Get returns one configuration.
func (h *Handlers) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	cfg, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "arr config not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cfg)
}

// Update replaces a configuration.
func (h *Handlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	cfg, err := h.service.Update(ctx, id, &input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "arr config not found"})
		case errors.Is(err, ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	h.changed(ctx)
	return c.JSON(http.StatusOK, cfg)
}

// Delete removes a configuration.
func (h *Handlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "arr config not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	h.changed(ctx)
	return c.NoContent(http.StatusNoContent)
}

// Test checks connectivity to the configured server.
func (h *Handlers) Test(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	cfg, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "arr config not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if h.testConn == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "connection testing not available"})
	}
	if err := h.testConn(ctx, cfg); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handlers) changed(ctx context.Context) {
	if h.onChange != nil {
		h.onChange(ctx)
	}
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
