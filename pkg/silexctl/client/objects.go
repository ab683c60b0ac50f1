package client

import (
	"context"
	"errors"
	"net/url"
)

type ScientificObjectService struct {
	client *Client
}

func (c *Client) ScientificObjects() *ScientificObjectService {
	return &ScientificObjectService{client: c}
}

type ScientificObject struct {
	URI     string `json:"uri"`
	Name    string `json:"name"`
	Type    string `json:"rdf_type,omitempty"`
	Factors []struct {
		URI string `json:"uri"`
	} `json:"factor_level,omitempty"`
}

type ScientificObjectListOptions struct {
	Experiment string
	ListOptions
}

func (s *ScientificObjectService) List(ctx context.Context, opts ScientificObjectListOptions) ([]ScientificObject, Pagination, error) {
	query := opts.query()
	if opts.Experiment != "" {
		query["experiment"] = opts.Experiment
	}
	var resp envelope[[]ScientificObject]
	if err := s.client.get(ctx, "/core/scientific_objects", query, &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Result, resp.Metadata.Pagination, nil
}

func (s *ScientificObjectService) Get(ctx context.Context, uri string) (*ScientificObject, error) {
	if uri == "" {
		return nil, errors.New("scientific object uri is required")
	}
	var resp envelope[ScientificObject]
	if err := s.client.get(ctx, "/core/scientific_objects/"+url.PathEscape(uri), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}
