package gamebackend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ChampionsClient talks to the upstream champion catalog endpoints.
type ChampionsClient struct {
	client *Client
}

// Champion is a catalog entry (not a roster entry).
type Champion struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	ImageURL string `json:"image_url,omitempty"`
}

// List returns a page of the champion catalog. Filter pairs (name, class)
// are passed through to the upstream.
func (c *ChampionsClient) List(ctx context.Context, token string, page, pageSize int, filters map[string]string) (*Page[Champion], error) {
	query := pageQuery(page, pageSize, filters)

	var resp Page[Champion]
	if err := c.client.do(ctx, http.MethodGet, "/admin/champions", token, query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search returns up to limit champions matching the free-text query.
func (c *ChampionsClient) Search(ctx context.Context, token, text string, limit int) ([]Champion, error) {
	query := url.Values{}
	query.Set("search", text)
	query.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Items []Champion `json:"items"`
	}
	if err := c.client.do(ctx, http.MethodGet, "/admin/champions", token, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Update patches a catalog entry.
func (c *ChampionsClient) Update(ctx context.Context, token string, id int64, fields map[string]interface{}) (*Champion, error) {
	var resp Champion
	path := fmt.Sprintf("/admin/champions/%d", id)
	if err := c.client.do(ctx, http.MethodPatch, path, token, nil, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a catalog entry.
func (c *ChampionsClient) Delete(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/admin/champions/%d", id)
	return c.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// Load triggers a bulk catalog (re)load upstream.
func (c *ChampionsClient) Load(ctx context.Context, token string) error {
	return c.client.do(ctx, http.MethodPost, "/admin/champions/load", token, nil, nil, nil)
}
