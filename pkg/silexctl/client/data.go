package client

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Data batches sent to /core/data are capped; larger imports are split into
// sequential requests.
const defaultDataBatchSize = 500

type DataService struct {
	client    *Client
	batchSize int
}

func (c *Client) Data() *DataService {
	return &DataService{client: c, batchSize: defaultDataBatchSize}
}

// Observation is a single measurement of a variable on a target object.
type Observation struct {
	Target     string      `json:"target"`
	Variable   string      `json:"variable"`
	Date       string      `json:"date"`
	Value      any         `json:"value"`
	Confidence *float64    `json:"confidence,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
}

type Provenance struct {
	URI string `json:"uri"`
}

type DataSearchOptions struct {
	Target    string
	Variable  string
	StartDate string
	EndDate   string
	ListOptions
}

// Add imports observations through the platform's bulk data call, chunked to
// the batch size. It returns the URIs of the created records. A failed batch
// aborts the import; earlier batches are already committed server-side.
func (s *DataService) Add(ctx context.Context, observations []Observation) ([]string, error) {
	if len(observations) == 0 {
		return nil, errors.New("no observations to add")
	}
	created := make([]string, 0, len(observations))
	for start := 0; start < len(observations); start += s.batchSize {
		end := start + s.batchSize
		if end > len(observations) {
			end = len(observations)
		}
		var resp envelope[[]string]
		if err := s.client.post(ctx, "/core/data", observations[start:end], &resp); err != nil {
			return created, err
		}
		created = append(created, resp.Result...)
		s.client.log.Debug("imported data batch",
			zap.Int("batch_size", end-start), zap.Int("total", len(observations)))
	}
	return created, nil
}

func (s *DataService) Search(ctx context.Context, opts DataSearchOptions) ([]Observation, Pagination, error) {
	query := opts.query()
	if opts.Target != "" {
		query["targets"] = opts.Target
	}
	if opts.Variable != "" {
		query["variables"] = opts.Variable
	}
	if opts.StartDate != "" {
		query["start_date"] = opts.StartDate
	}
	if opts.EndDate != "" {
		query["end_date"] = opts.EndDate
	}
	var resp envelope[[]Observation]
	if err := s.client.get(ctx, "/core/data", query, &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Result, resp.Metadata.Pagination, nil
}
