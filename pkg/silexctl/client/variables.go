package client

import (
	"context"
	"errors"
	"net/url"
)

type VariableService struct {
	client *Client
}

func (c *Client) Variables() *VariableService {
	return &VariableService{client: c}
}

type Variable struct {
	URI             string         `json:"uri"`
	Name            string         `json:"name"`
	AlternativeName string         `json:"alternative_name,omitempty"`
	Description     string         `json:"description,omitempty"`
	Entity          *NamedResource `json:"entity,omitempty"`
	Characteristic  *NamedResource `json:"characteristic,omitempty"`
	Method          *NamedResource `json:"method,omitempty"`
	Unit            *NamedResource `json:"unit,omitempty"`
	DataType        string         `json:"datatype,omitempty"`
}

type NamedResource struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

func (s *VariableService) List(ctx context.Context, opts ListOptions) ([]Variable, Pagination, error) {
	var resp envelope[[]Variable]
	if err := s.client.get(ctx, "/core/variables", opts.query(), &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Result, resp.Metadata.Pagination, nil
}

func (s *VariableService) Get(ctx context.Context, uri string) (*Variable, error) {
	if uri == "" {
		return nil, errors.New("variable uri is required")
	}
	var resp envelope[Variable]
	if err := s.client.get(ctx, "/core/variables/"+url.PathEscape(uri), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}
