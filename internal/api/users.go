package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// SearchUsers returns up to pageSize users whose login or name matches query.
func (c *Client) SearchUsers(ctx context.Context, query string, pageSize int) ([]model.User, error) {
	var resp struct {
		Users []model.User `json:"users"`
	}
	params := url.Values{"ps": {strconv.Itoa(pageSize)}}
	if query != "" {
		params.Set("q", query)
	}
	if err := c.get(ctx, "api/users/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// SearchTags returns up to pageSize issue tags containing query.
func (c *Client) SearchTags(ctx context.Context, query string, pageSize int) ([]string, error) {
	var resp struct {
		Tags []string `json:"tags"`
	}
	params := url.Values{"ps": {strconv.Itoa(pageSize)}}
	if query != "" {
		params.Set("q", query)
	}
	if err := c.get(ctx, "api/issues/tags", params, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}
