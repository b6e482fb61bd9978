package sources

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

const yamlContentType = "application/yaml"

// maxFileSize caps uploaded source documents.
const maxFileSize = 1 << 20

// Handlers handles source file HTTP endpoints.
type Handlers struct {
	cache *Cache
}

// NewHandlers creates a new source file handlers instance.
func NewHandlers(cache *Cache) *Handlers {
	return &Handlers{cache: cache}
}

// RegisterRoutes registers source file routes on the given group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/reload", h.Reload)
	g.GET("/:category", h.List)
	g.GET("/:category/:name", h.Get)
	g.PUT("/:category/:name", h.Put)
	g.DELETE("/:category/:name", h.Delete)
	g.POST("/:category/:name/rename", h.Rename)
}

// Reload re-reads the whole source tree from disk.
func (h *Handlers) Reload(c echo.Context) error {
	if err := h.cache.Reload(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reloaded"})
}

// List returns the names of every file in a category.
func (h *Handlers) List(c echo.Context) error {
	cat, err := category(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, h.cache.Names(cat))
}

// Get returns one file's raw YAML.
func (h *Handlers) Get(c echo.Context) error {
	cat, err := category(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	data, err := h.cache.Get(cat, StripExt(c.Param("name")))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, yamlContentType, data)
}

// Put writes one file, validating the YAML against the category's schema
// first. Writing a new name creates the file.
func (h *Handlers) Put(c echo.Context) error {
	cat, err := category(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxFileSize))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}
	if err := validateDoc(cat, data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	name := StripExt(c.Param("name"))
	if err := h.cache.Update(cat, name, data); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"name": name})
}

// Delete removes one file.
func (h *Handlers) Delete(c echo.Context) error {
	cat, err := category(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.cache.Remove(cat, StripExt(c.Param("name"))); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// Rename moves a file to a new name and rewrites its name key.
func (h *Handlers) Rename(c echo.Context) error {
	cat, err := category(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var body struct {
		NewName string `json:"newName"`
	}
	if err := c.Bind(&body); err != nil || body.NewName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "newName is required"})
	}

	oldName := StripExt(c.Param("name"))
	newName := StripExt(body.NewName)
	if err := h.cache.Rename(cat, oldName, newName); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"name": newName})
}

// category parses and validates the :category route parameter.
func category(c echo.Context) (Category, error) {
	cat := Category(c.Param("category"))
	if !cat.Valid() {
		return "", errors.New("category must be regex_pattern, custom_format or profile")
	}
	return cat, nil
}

// validateDoc decodes the payload against the category's document type.
func validateDoc(cat Category, data []byte) error {
	var doc any
	switch cat {
	case CategoryRegexPattern:
		doc = &PatternDoc{}
	case CategoryCustomFormat:
		doc = &FormatDoc{}
	case CategoryProfile:
		doc = &ProfileDoc{}
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return errors.New("document is not valid YAML for this category: " + err.Error())
	}
	return nil
}
