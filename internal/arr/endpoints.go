package arr

import (
	"context"
	"fmt"
	"net/http"
)

// Resource is the identity slice of a server-side custom format or quality
// profile. Extra response fields are ignored; reconciliation works by name.
type Resource struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SystemStatus is the subset of /api/v3/system/status used for validation.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// SystemStatus fetches the application identity, used to validate a saved
// target configuration.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.do(ctx, http.MethodGet, "/api/v3/system/status", nil, &status); err != nil {
		return nil, fmt.Errorf("failed to fetch system status: %w", err)
	}
	return &status, nil
}

// ListFormats fetches every custom format on the server.
func (c *Client) ListFormats(ctx context.Context) ([]Resource, error) {
	var formats []Resource
	if err := c.do(ctx, http.MethodGet, "/api/v3/customformat", nil, &formats); err != nil {
		return nil, fmt.Errorf("failed to list custom formats: %w", err)
	}
	return formats, nil
}

// ListProfiles fetches every quality profile on the server.
func (c *Client) ListProfiles(ctx context.Context) ([]Resource, error) {
	var profiles []Resource
	if err := c.do(ctx, http.MethodGet, "/api/v3/qualityprofile", nil, &profiles); err != nil {
		return nil, fmt.Errorf("failed to list quality profiles: %w", err)
	}
	return profiles, nil
}

// CreateFormat posts a new custom format and returns the created resource.
func (c *Client) CreateFormat(ctx context.Context, body any) (*Resource, error) {
	var created Resource
	if err := c.do(ctx, http.MethodPost, "/api/v3/customformat", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFormat puts an existing custom format by id.
func (c *Client) UpdateFormat(ctx context.Context, id int, body any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v3/customformat/%d", id), body, nil)
}

// CreateProfile posts a new quality profile and returns the created resource.
func (c *Client) CreateProfile(ctx context.Context, body any) (*Resource, error) {
	var created Resource
	if err := c.do(ctx, http.MethodPost, "/api/v3/qualityprofile", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProfile puts an existing quality profile by id.
func (c *Client) UpdateProfile(ctx context.Context, id int, body any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v3/qualityprofile/%d", id), body, nil)
}

// NameIDMap builds a name→id lookup from a resource list.
func NameIDMap(resources []Resource) map[string]int {
	m := make(map[string]int, len(resources))
	for _, r := range resources {
		m[r.Name] = r.ID
	}
	return m
}
