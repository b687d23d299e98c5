package client

import (
	"context"
	"net/url"
)

// Health checks the liveness of the API
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, "GET", "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// Summary retrieves the organization-level savings rollup
func (c *Client) Summary(ctx context.Context, organizationID string) (*Summary, error) {
	var summary Summary
	if err := c.doRequest(ctx, "GET", orgPath(organizationID, "/summary"), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}
