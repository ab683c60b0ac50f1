package client

import (
	"context"
	"errors"
	"net/url"
)

type ExperimentService struct {
	client *Client
}

func (c *Client) Experiments() *ExperimentService {
	return &ExperimentService{client: c}
}

type Experiment struct {
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Objective   string   `json:"objective,omitempty"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Species     []string `json:"species,omitempty"`
	IsPublic    bool     `json:"is_public,omitempty"`
}

func (s *ExperimentService) List(ctx context.Context, opts ListOptions) ([]Experiment, Pagination, error) {
	var resp envelope[[]Experiment]
	if err := s.client.get(ctx, "/core/experiments", opts.query(), &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Result, resp.Metadata.Pagination, nil
}

func (s *ExperimentService) Get(ctx context.Context, uri string) (*Experiment, error) {
	if uri == "" {
		return nil, errors.New("experiment uri is required")
	}
	var resp envelope[Experiment]
	if err := s.client.get(ctx, "/core/experiments/"+url.PathEscape(uri), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}
