package client

import (
	"context"
	"strconv"
)

// JobService handles optimization job API calls
type JobService struct {
	client *Client
}

// List retrieves an organization's optimization jobs, newest first. limit <= 0 uses the server default.
func (s *JobService) List(ctx context.Context, organizationID string, limit int) ([]Job, error) {
	path := orgPath(organizationID, "/jobs")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var result struct {
		Jobs []Job `json:"jobs"`
	}
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Jobs, nil
}

// Get retrieves a single optimization job
func (s *JobService) Get(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := s.client.doRequest(ctx, "GET", "/api/v1/jobs/"+pathEscape(id), nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
