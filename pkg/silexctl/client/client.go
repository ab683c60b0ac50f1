package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Client struct {
	rest *resty.Client
	log  *zap.Logger
}

type Option func(*Client) error

func New(server string, opts ...Option) (*Client, error) {
	if server == "" {
		return nil, errors.New("server is required")
	}
	if _, err := url.Parse(server); err != nil {
		return nil, fmt.Errorf("invalid server: %w", err)
	}
	c := &Client{
		rest: resty.New().
			SetBaseURL(strings.TrimSuffix(server, "/") + "/rest").
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "silexctl"),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithBearer sets the Authorization header for all requests; the value is a
// full header as produced by the auth layer.
func WithBearer(header string) Option {
	return func(c *Client) error {
		if header == "" {
			return errors.New("bearer header is required")
		}
		c.rest.SetHeader("Authorization", header)
		return nil
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) error {
		if log != nil {
			c.log = log
		}
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout > 0 {
			c.rest.SetTimeout(timeout)
		}
		return nil
	}
}

// The platform wraps every response body in a metadata/result envelope.
type envelope[T any] struct {
	Metadata Metadata `json:"metadata"`
	Result   T        `json:"result"`
}

type Metadata struct {
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	PageSize    int `json:"pageSize"`
	CurrentPage int `json:"currentPage"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// ListOptions control server-side pagination and name filtering.
type ListOptions struct {
	Name     string
	Page     int
	PageSize int
}

func (o ListOptions) query() map[string]string {
	params := map[string]string{}
	if o.Name != "" {
		params["name"] = o.Name
	}
	if o.Page > 0 {
		params["page"] = fmt.Sprintf("%d", o.Page)
	}
	if o.PageSize > 0 {
		params["page_size"] = fmt.Sprintf("%d", o.PageSize)
	}
	return params
}

func (c *Client) get(ctx context.Context, endpoint string, query map[string]string, out any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return newHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return newHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

func newHTTPError(resp *resty.Response) error {
	var apiErr struct {
		Result struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		} `json:"result"`
		Message string `json:"message"`
	}
	body := resp.Body()
	if len(body) > 0 {
		_ = json.Unmarshal(body, &apiErr)
	}
	msg := strings.TrimSpace(apiErr.Result.Message)
	if msg == "" {
		msg = strings.TrimSpace(apiErr.Message)
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = resp.Status()
	}
	return &HTTPError{StatusCode: resp.StatusCode(), Message: msg}
}
